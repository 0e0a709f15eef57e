package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResourceValidate(t *testing.T) {
	require.NoError(t, Resource{Kind: KindRoom, Name: "Aula 3", Capacity: 40}.Validate())
	require.Error(t, Resource{Kind: KindRoom, Name: "Aula 3"}.Validate(), "zero capacity")
	require.Error(t, Resource{Kind: KindRoom, Capacity: 4}.Validate(), "no name")
	require.Error(t, Resource{Kind: "auditorium", Name: "x", Capacity: 4}.Validate(), "unknown kind")
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Laboratory ")
	require.NoError(t, err)
	require.Equal(t, KindLaboratory, k)
	k, err = ParseKind("")
	require.NoError(t, err)
	require.Equal(t, Kind(""), k)
	_, err = ParseKind("gym")
	require.Error(t, err)
}

func TestMemory_ListAndBookable(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(
		Resource{Kind: KindLaboratory, Name: "Chemistry", Capacity: 20, IsActive: true},
		Resource{Kind: KindLaboratory, Name: "Biology", Capacity: 15, IsActive: false},
		Resource{Kind: KindRoom, Name: "Aula Magna", Capacity: 200, IsActive: true},
	)

	active, err := m.ListActive(ctx, "")
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "Chemistry", active[0].Name)
	require.Equal(t, "Aula Magna", active[1].Name)

	labs, err := m.FetchAll(ctx, KindLaboratory)
	require.NoError(t, err)
	require.Equal(t, []string{"Biology", "Chemistry"}, []string{labs[0].Name, labs[1].Name})

	_, err = Bookable(ctx, m, labs[0].ID)
	require.ErrorIs(t, err, ErrResourceNotFound, "inactive")
	_, err = Bookable(ctx, m, 404)
	require.ErrorIs(t, err, ErrResourceNotFound, "absent")
	got, err := Bookable(ctx, m, labs[1].ID)
	require.NoError(t, err)
	require.Equal(t, uint32(20), got.Capacity)

	updated, err := m.Upsert(ctx, Resource{Kind: KindLaboratory, Name: "Chemistry", Capacity: 25, IsActive: true})
	require.NoError(t, err)
	require.Equal(t, got.ID, updated.ID)
}
