package helpers

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// OTPLength is the number of digits in OTP codes and reset tokens.
const OTPLength = 6

var otpSpace = big.NewInt(900000)

// GenOTPCode generates a secure random 6-digit code in 100000-999999,
// so the code never starts with zero.
func GenOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
