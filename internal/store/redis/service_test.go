package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/ideas"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewStore(client, WithKeyPrefix("test"), WithClock(c.now)), mr
}

func sampleInput(name, category string) domain.ComponentInput {
	return domain.ComponentInput{
		Name:        name,
		Description: name + " description",
		Category:    category,
		PriceRange:  "$5-10",
	}
}

func TestDocumentLifecycle(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	doc, err := s.Create(ctx, "things", Document{"name": "a"})
	require.NoError(t, err)
	id, _ := doc["id"].(string)
	require.NotEmpty(t, id)
	assert.True(t, mr.Exists("test:things:doc:"+id))

	got, err := s.Get(ctx, "things", id)
	require.NoError(t, err)
	assert.Equal(t, "a", got["name"])

	updated, err := s.Update(ctx, "things", id, Document{"name": "b", "extra": true})
	require.NoError(t, err)
	assert.Equal(t, "b", updated["name"])
	assert.Equal(t, true, updated["extra"])
	assert.Equal(t, doc["created_at"], updated["created_at"])

	n, err := s.Count(ctx, "things")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.Delete(ctx, "things", id))
	_, err = s.Get(ctx, "things", id)
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(s.Delete(ctx, "things", id)))
}

func TestUpdateMissing(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Update(context.Background(), "things", "nope", Document{"a": 1})
	assert.True(t, domain.IsNotFound(err))
}

func TestQueryOrderAndFilters(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := s.Create(ctx, "things", Document{"name": name, "kind": "x"})
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, "things", Document{"name": "other", "kind": "y"})
	require.NoError(t, err)

	asc, err := s.Query(ctx, "things", []Filter{{Field: "kind", Value: "x"}}, Ascending)
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, "first", asc[0]["name"])
	assert.Equal(t, "third", asc[2]["name"])

	desc, err := s.Query(ctx, "things", nil, Descending)
	require.NoError(t, err)
	require.Len(t, desc, 4)
	assert.Equal(t, "other", desc[0]["name"])
}

func TestCreateManyKeepsInputOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	docs := []Document{{"id": "1"}, {"id": "10"}, {"id": "2"}}
	_, err := s.CreateMany(ctx, "things", docs)
	require.NoError(t, err)

	got, err := s.Query(ctx, "things", nil, Ascending)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0]["id"])
	assert.Equal(t, "10", got[1]["id"])
	assert.Equal(t, "2", got[2]["id"])
}

func TestNetworkToggle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.DisableNetwork()
	assert.False(t, s.NetworkEnabled())
	_, err := s.Query(ctx, "things", nil, Ascending)
	assert.ErrorIs(t, err, domain.ErrNetworkDisabled)
	_, err = s.Create(ctx, "things", Document{})
	assert.ErrorIs(t, err, domain.ErrNetworkDisabled)

	assert.True(t, s.CheckConnection(ctx), "CheckConnection re-enables the network")
	assert.True(t, s.NetworkEnabled())
}

func TestCheckConnectionServerDown(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()
	assert.False(t, s.CheckConnection(context.Background()))
}

func TestComponents(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	led, err := s.CreateComponent(ctx, sampleInput("Red LED", "Output"))
	require.NoError(t, err)
	assert.NotEmpty(t, led.ID)
	assert.Equal(t, domain.DefaultAvailability, led.Availability)
	assert.False(t, led.CreatedAt.IsZero())

	_, err = s.CreateComponent(ctx, sampleInput("DHT22", "Sensors"))
	require.NoError(t, err)

	all, err := s.ListComponents(ctx, domain.ComponentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "DHT22", all[0].Name, "newest first")

	sensors, err := s.ListComponents(ctx, domain.ComponentFilter{Category: "Sensors"})
	require.NoError(t, err)
	require.Len(t, sensors, 1)

	found, err := s.ListComponents(ctx, domain.ComponentFilter{Search: "red"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, led.ID, found[0].ID)

	in := sampleInput("Green LED", "Output")
	in.Availability = "Out of stock"
	updated, err := s.UpdateComponent(ctx, led.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Green LED", updated.Name)
	assert.Equal(t, "Out of stock", updated.Availability)
	assert.True(t, updated.UpdatedAt.After(led.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(led.CreatedAt))

	require.NoError(t, s.DeleteComponent(ctx, led.ID))
	_, err = s.GetComponent(ctx, led.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestProjects(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	p, err := s.SaveProject(ctx, domain.Project{Title: "Weather station", UserID: "u1"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, domain.StatusSaved, p.Status)
	assert.False(t, p.DateSaved.IsZero())

	_, err = s.SaveProject(ctx, domain.Project{Title: "Other", UserID: "u2"})
	require.NoError(t, err)

	mine, err := s.ListProjects(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p.ID, mine[0].ID)

	all, err := s.ListProjects(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	status := domain.StatusInProgress
	notes := "wired the sensor"
	updated, err := s.UpdateProject(ctx, p.ID, domain.ProjectPatch{Status: &status, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, "Weather station", updated.Title)

	require.NoError(t, s.DeleteProject(ctx, p.ID))
	_, err = s.GetProject(ctx, p.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestUsers(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, domain.User{ID: "sub-123", Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "sub-123", u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := s.GetUser(ctx, "sub-123")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	name := "Ada L."
	updated, err := s.UpdateUser(ctx, "sub-123", domain.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "ada@example.com", updated.Email)

	_, err = s.GetUser(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestInitializeDefaultData(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	seeded, err := s.InitializeDefaultData(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	n, err := s.Count(ctx, CollectionComponents)
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)

	templates, err := s.ListIdeas(ctx)
	require.NoError(t, err)
	catalog := ideas.Catalog()
	require.Len(t, templates, len(catalog))
	for i := range catalog {
		assert.Equal(t, catalog[i].ID, templates[i].ID)
	}

	seeded, err = s.InitializeDefaultData(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestInitializeDefaultDataCompletesIdeas(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	// Components present but no idea templates, as after an interrupted seed.
	_, err := s.CreateComponent(ctx, domain.ComponentInput{
		Name:        "Hall Sensor",
		Description: "Detects magnetic fields",
		Category:    "sensors",
		PriceRange:  "$1-5",
	})
	require.NoError(t, err)

	seeded, err := s.InitializeDefaultData(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	n, err := s.Count(ctx, CollectionComponents)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "existing catalog is left alone")

	templates, err := s.ListIdeas(ctx)
	require.NoError(t, err)
	assert.Len(t, templates, len(ideas.Catalog()))
}
