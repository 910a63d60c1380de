package application

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	repo "github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
)

const (
	MsgProductNotFound = "Product not found"
	MsgImagesRequired  = "Please upload product images"
	MsgNoImageStore    = "Image storage is not configured"
)

// ImageStore persists product images. *helpers.GCSImageStore implements it.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, pathOrURL string) error
}

// ImageUpload is one uploaded file.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ProductInput carries create and update fields. Nil pointers are left
// untouched on update.
type ProductInput struct {
	Name        *string
	Price       *float64
	Colors      []string
	Description *string
	Category    *string
	AvailableOn *time.Time
	Stock       *int
	Images      []ImageUpload
}

type ProductService struct {
	Repo   repo.ProductRepository
	Images ImageStore
	Logger *logrus.Logger
}

func NewProductService(repo repo.ProductRepository, images ImageStore, logger *logrus.Logger) *ProductService {
	return &ProductService{Repo: repo, Images: images, Logger: logger}
}

func validateProduct(p *entity.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return validationErr("Please enter product name")
	case len([]rune(p.Name)) > 100:
		return validationErr("Product name cannot exceed 100 characters")
	case p.Price <= 0:
		return validationErr("Please enter product price")
	case strings.TrimSpace(p.Description) == "":
		return validationErr("Please enter product description")
	case strings.TrimSpace(p.Category) == "":
		return validationErr("Please select category for this product")
	case p.AvailableOn.IsZero():
		return validationErr("Please enter product availability date")
	case p.Stock < 0:
		return validationErr("Product stock cannot be negative")
	}
	return nil
}

func apply(p *entity.Product, in ProductInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Colors != nil {
		p.Colors = in.Colors
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.AvailableOn != nil {
		p.AvailableOn = *in.AvailableOn
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
}

func (s *ProductService) upload(ctx context.Context, files []ImageUpload) ([]string, error) {
	if s.Images == nil {
		return nil, dependencyErr(MsgNoImageStore, nil)
	}
	urls := make([]string, 0, len(files))
	for _, f := range files {
		objectPath := "products/" + uuid.NewString() + strings.ToLower(path.Ext(f.Filename))
		url, err := s.Images.Upload(ctx, objectPath, f.ContentType, f.Body)
		if err != nil {
			s.removeImages(ctx, urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *ProductService) removeImages(ctx context.Context, images []string) {
	if s.Images == nil {
		return
	}
	for _, img := range images {
		if err := s.Images.Delete(ctx, img); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("image", img).Warn("image delete failed")
		}
	}
}

// Create validates the product, uploads its images and stores it.
func (s *ProductService) Create(ctx context.Context, createdBy string, in ProductInput) (*entity.Product, error) {
	if len(in.Images) == 0 {
		return nil, validationErr(MsgImagesRequired)
	}
	p := &entity.Product{CreatedBy: createdBy}
	apply(p, in)
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	images, err := s.upload(ctx, in.Images)
	if err != nil {
		return nil, err
	}
	p.Images = images
	if err := s.Repo.Create(ctx, p); err != nil {
		s.removeImages(ctx, images)
		return nil, err
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context) ([]entity.Product, error) {
	return s.Repo.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFoundErr(MsgProductNotFound)
	}
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundErr(MsgProductNotFound)
		}
		return nil, err
	}
	return p, nil
}

// Update applies the given fields. New images replace the stored ones, which
// are deleted once the update is stored.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*entity.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(p, in)
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	var old []string
	if len(in.Images) > 0 {
		images, err := s.upload(ctx, in.Images)
		if err != nil {
			return nil, err
		}
		old, p.Images = p.Images, images
	}
	if err := s.Repo.Update(ctx, p); err != nil {
		if len(in.Images) > 0 {
			s.removeImages(ctx, p.Images)
		}
		return nil, err
	}
	s.removeImages(ctx, old)
	return p, nil
}

// Delete removes the product and then, best effort, its images.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundErr(MsgProductNotFound)
		}
		return err
	}
	s.removeImages(ctx, p.Images)
	return nil
}
