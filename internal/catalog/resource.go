// Package catalog is the read side of bookable laboratories and rooms.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindLaboratory Kind = "laboratory"
	KindRoom       Kind = "room"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindLaboratory:
		return KindLaboratory, nil
	case KindRoom:
		return KindRoom, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("unknown resource kind: %s", s)
	}
}

// ErrResourceNotFound covers unknown and inactive resources alike.
var ErrResourceNotFound = errors.New("resource not found")

type Resource struct {
	ID       int64  `json:"id"`
	Kind     Kind   `json:"kind"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Capacity uint32 `json:"capacity"`
	IsActive bool   `json:"isActive"`
}

func (r Resource) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("resource name is required")
	}
	if r.Capacity == 0 {
		return errors.New("resource capacity must be > 0")
	}
	if r.Kind != KindLaboratory && r.Kind != KindRoom {
		return fmt.Errorf("unknown resource kind: %s", r.Kind)
	}
	return nil
}

// Catalog is consumed read-only by the booking core. An empty kind means every kind.
type Catalog interface {
	Get(ctx context.Context, id int64) (Resource, error)
	ListActive(ctx context.Context, kind Kind) ([]Resource, error)
	FetchAll(ctx context.Context, kind Kind) ([]Resource, error)
}

// Bookable returns the resource only when it exists and is active.
func Bookable(ctx context.Context, c Catalog, id int64) (Resource, error) {
	r, err := c.Get(ctx, id)
	if err != nil {
		return Resource{}, err
	}
	if !r.IsActive {
		return Resource{}, fmt.Errorf("%w: resource %d is inactive", ErrResourceNotFound, id)
	}
	return r, nil
}
