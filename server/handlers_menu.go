package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/internal/utils"
	"github.com/RenanGalvao/pizza-ecommerce/menu"
	"github.com/pkg/errors"
)

const (
	itemMissingMessage = "Item doesn't exist."
	maxMenuIDAttempts  = 3
)

func (h *handlers) getMenu(ctx context.Context, req Request) (Response, error) {
	if id := req.Segment(1); id != "" {
		item, err := h.menu.Read(ctx, id)
		if err != nil {
			return Response{}, apperrors.Recast(err, apperrors.ErrNotFound, apperrors.ErrValidation, itemMissingMessage)
		}
		return JSON(http.StatusOK, item), nil
	}

	items, err := h.menu.ReadAll(ctx)
	if err != nil {
		return Response{}, err
	}
	filter := menu.Filter{
		Name:        strings.TrimSpace(req.Query.Get("name")),
		Price:       strings.TrimSpace(req.Query.Get("price")),
		Description: strings.TrimSpace(req.Query.Get("description")),
		Category:    strings.TrimSpace(req.Query.Get("category")),
	}
	if filter.Price != "" {
		if _, err := strconv.ParseFloat(filter.Price, 64); err != nil {
			return Response{}, apperrors.Validation(missingFieldsMessage([]string{"price"}), "price")
		}
	}
	return JSON(http.StatusOK, filter.Apply(items)), nil
}

func (h *handlers) createMenuItem(ctx context.Context, req Request) (Response, error) {
	var in menuInput
	if err := h.decode(req.Body, &in); err != nil {
		return Response{}, err
	}
	item := menu.Item{
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.ToLower(in.Category),
	}

	for attempt := 1; attempt <= maxMenuIDAttempts; attempt++ {
		id, err := h.newID(h.cfg.GetTokenIDLength())
		if err != nil {
			return Response{}, errors.Wrap(err, "createMenuItem newID")
		}
		item.ID = id
		err = h.menu.Create(ctx, id, item)
		if err == nil {
			return JSON(http.StatusCreated, item), nil
		}
		if !apperrors.Is(err, apperrors.ErrAlreadyExists) {
			return Response{}, err
		}
	}
	return Response{}, apperrors.Wrap(apperrors.ErrStore, errors.New("createMenuItem: could not allocate a unique item id"))
}

func (h *handlers) updateMenuItem(ctx context.Context, req Request) (Response, error) {
	id := req.Segment(1)
	if id == "" {
		return Response{}, apperrors.Validation("Missing /:item_id", "item_id")
	}
	var in menuUpdateInput
	if err := h.decode(req.Body, &in); err != nil {
		return Response{}, err
	}
	if err := atLeastOne(in.any(), "name", "price", "description", "category"); err != nil {
		return Response{}, err
	}

	item, err := h.menu.Mutate(ctx, id, func(item *menu.Item) error {
		if in.Name != "" {
			item.Name = strings.TrimSpace(in.Name)
		}
		if in.Price != nil {
			item.Price = utils.Value(in.Price)
		}
		if in.Description != "" {
			item.Description = strings.TrimSpace(in.Description)
		}
		if in.Category != "" {
			item.Category = strings.ToLower(in.Category)
		}
		return nil
	})
	if err != nil {
		return Response{}, apperrors.Recast(err, apperrors.ErrNotFound, apperrors.ErrValidation, itemMissingMessage)
	}
	return JSON(http.StatusOK, item), nil
}

// deleteMenuItem answers 204 whether or not the item existed.
func (h *handlers) deleteMenuItem(ctx context.Context, req Request) (Response, error) {
	id := req.Segment(1)
	if id == "" {
		return Response{}, apperrors.Validation("Missing /:item_id", "item_id")
	}
	if err := ignoreNotFound(h.menu.Delete(ctx, id)); err != nil {
		return Response{}, err
	}
	return NoContent(), nil
}
