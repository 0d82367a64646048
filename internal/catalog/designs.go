package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arawak/showroom/internal/media"
	"github.com/arawak/showroom/internal/store"
)

type DesignStore interface {
	ListDesigns(ctx context.Context) ([]store.Design, error)
	GetDesign(ctx context.Context, id int64) (*store.Design, error)
	CreateDesign(ctx context.Context, in store.DesignCreate) (*store.Design, error)
	UpdateDesign(ctx context.Context, id int64, upd store.DesignUpdate) (*store.Design, string, error)
	DeleteDesign(ctx context.Context, id int64) (*store.Design, error)
}

// DesignInput carries the form fields of a create or update. Image is a
// staged upload; the service commits or discards it.
type DesignInput struct {
	Title       string
	Description string
	Image       *media.Upload
}

type Designs struct {
	store  DesignStore
	assets Assets
	logger *slog.Logger
}

func NewDesigns(st DesignStore, assets Assets, logger *slog.Logger) *Designs {
	return &Designs{store: st, assets: assets, logger: orDefault(logger)}
}

func (d *Designs) List(ctx context.Context) ([]store.Design, error) {
	return d.store.ListDesigns(ctx)
}

func (d *Designs) Get(ctx context.Context, id int64) (*store.Design, error) {
	return d.store.GetDesign(ctx, id)
}

func (d *Designs) Create(ctx context.Context, in DesignInput) (*store.Design, error) {
	defer in.Image.Discard()

	title, description, err := requireText(in.Title, in.Description)
	if err != nil {
		return nil, err
	}
	if in.Image == nil {
		return nil, invalid("Image file is required")
	}

	name, err := in.Image.Commit()
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	created, err := d.store.CreateDesign(ctx, store.DesignCreate{Title: title, Description: description, Image: name})
	if err != nil {
		removeAsset(d.logger, d.assets, name, media.Images, "design insert failed")
		return nil, err
	}
	d.logger.Info("design created", "id", created.ID, "image", name)
	return created, nil
}

// Update replaces the text fields and, when a new image is supplied, the
// image. The previous image is removed only after the record update
// succeeds; on failure the new image is removed instead.
func (d *Designs) Update(ctx context.Context, id int64, in DesignInput) (*store.Design, error) {
	defer in.Image.Discard()

	title, description, err := requireText(in.Title, in.Description)
	if err != nil {
		return nil, err
	}

	upd := store.DesignUpdate{Title: title, Description: description}
	var newName string
	if in.Image != nil {
		newName, err = in.Image.Commit()
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		upd.Image = &newName
	}

	updated, previous, err := d.store.UpdateDesign(ctx, id, upd)
	if err != nil {
		removeAsset(d.logger, d.assets, newName, media.Images, "design update failed")
		return nil, err
	}
	removeAsset(d.logger, d.assets, previous, media.Images, "replaced")
	d.logger.Info("design updated", "id", id, "image_replaced", previous != "")
	return updated, nil
}

func (d *Designs) Delete(ctx context.Context, id int64) error {
	deleted, err := d.store.DeleteDesign(ctx, id)
	if err != nil {
		return err
	}
	removeAsset(d.logger, d.assets, deleted.Image, media.Images, "design deleted")
	d.logger.Info("design deleted", "id", id)
	return nil
}
