package experiment_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apilon/apilon-landing/internal/analytics"
	"github.com/apilon/apilon-landing/internal/experiment"
)

type eventLog struct {
	labels []string
}

func (l *eventLog) Tag(_ context.Context, cmd analytics.Command, target string, params analytics.Params) error {
	if cmd == analytics.CommandEvent && target == string(analytics.ActionAssigned) {
		l.labels = append(l.labels, params[analytics.ParamEventLabel].(string))
	}
	return nil
}

type brokenStorage struct {
	getErr, setErr error
	gets, sets     int
}

func (b *brokenStorage) Get(string) (string, bool, error) {
	b.gets++
	return "", false, b.getErr
}

func (b *brokenStorage) Set(string, string) error {
	b.sets++
	return b.setErr
}

func sequentialIDs(ids ...string) experiment.Option {
	i := 0
	return experiment.WithIDGenerator(func() string {
		id := ids[i%len(ids)]
		i++
		return id
	})
}

func TestHash_SumOfCodePoints(t *testing.T) {
	assert.Equal(t, 0, experiment.Hash(""))
	assert.Equal(t, 97+98+99, experiment.Hash("abc"))
	assert.Equal(t, experiment.Hash("abc"), experiment.Hash("cba"))
}

func TestDerive_HashSeven(t *testing.T) {
	a := experiment.FromHash("x", 7)

	assert.Equal(t, "B", a.HeroHeadline)
	assert.Equal(t, "green", a.CTAColor)
	assert.Equal(t, "reversed", a.FeatureOrder)
	assert.Equal(t, "after", a.SocialProofPosition)
}

func TestDerive_HashZero(t *testing.T) {
	a := experiment.FromHash("x", 0)

	assert.Equal(t, experiment.Assignment{
		SessionID:           "x",
		HeroHeadline:        "A",
		CTAColor:            "blue",
		FeatureOrder:        "original",
		SocialProofPosition: "before",
	}, a)
}

func TestDerive_Deterministic(t *testing.T) {
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("session-%d-%x", i, i*7919)
		assert.Equal(t, experiment.Derive(id), experiment.Derive(id))
	}
}

func TestDerive_SameResiduesSameArms(t *testing.T) {
	// 7 and 13 agree mod 2 and mod 3
	a := experiment.FromHash("first", 7)
	b := experiment.FromHash("second", 13)

	for _, d := range experiment.Dimensions {
		assert.Equal(t, a.Arm(d), b.Arm(d), d)
	}
}

func TestDerive_StringsWithEqualHash(t *testing.T) {
	a := experiment.Derive("ad")
	b := experiment.Derive("bc")

	require.Equal(t, experiment.Hash("ad"), experiment.Hash("bc"))
	a.SessionID, b.SessionID = "", ""
	assert.Equal(t, a, b)
}

func TestAssign_FirstCallCreatesAndPersists(t *testing.T) {
	storage := experiment.NewMemoryStorage()
	events := &eventLog{}
	tr := analytics.NewTracker(events, "", nil)
	as := experiment.NewAssignor(storage, tr, sequentialIDs("abc"))

	a := as.Assign(context.Background())

	stored, ok, err := storage.Get(experiment.SessionKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", stored)
	assert.Equal(t, experiment.Derive("abc"), a)
	assert.Equal(t, []string{"session_abc"}, events.labels)
}

func TestAssign_IdempotentWithinSession(t *testing.T) {
	storage := experiment.NewMemoryStorage()
	events := &eventLog{}
	tr := analytics.NewTracker(events, "", nil)

	first := experiment.NewAssignor(storage, tr, sequentialIDs("one", "two")).Assign(context.Background())
	// a re-render builds a new assignor against the same session storage
	second := experiment.NewAssignor(storage, tr, sequentialIDs("three")).Assign(context.Background())

	assert.Equal(t, first, second)
	assert.Len(t, events.labels, 1)
}

func TestAssign_RoundTrip(t *testing.T) {
	storage := experiment.NewMemoryStorage()
	a := experiment.NewAssignor(storage, nil).Assign(context.Background())

	id, ok, err := storage.Get(experiment.SessionKey)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, a, experiment.Derive(id))
}

func TestAssign_StorageUnavailableFallsBack(t *testing.T) {
	events := &eventLog{}
	tr := analytics.NewTracker(events, "", nil)
	storage := &brokenStorage{getErr: errors.New("SecurityError: storage disabled")}
	as := experiment.NewAssignor(storage, tr, sequentialIDs("mem-1", "mem-2"))

	first := as.Assign(context.Background())
	second := as.Assign(context.Background())

	assert.Equal(t, "mem-1", first.SessionID)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"session_mem-1"}, events.labels)
	assert.Equal(t, 1, storage.gets)
}

func TestAssign_SetFailureFallsBack(t *testing.T) {
	storage := &brokenStorage{setErr: errors.New("QuotaExceededError")}
	as := experiment.NewAssignor(storage, nil, sequentialIDs("a", "b"))

	first := as.Assign(context.Background())
	second := as.Assign(context.Background())

	assert.Equal(t, "b", first.SessionID)
	assert.Equal(t, first, second)
}

func TestAssign_OnAssignHook(t *testing.T) {
	storage := experiment.NewMemoryStorage()
	var hooked []experiment.Assignment
	as := experiment.NewAssignor(storage, nil, sequentialIDs("zz"))
	as.OnAssign = func(_ context.Context, a experiment.Assignment) { hooked = append(hooked, a) }

	as.Assign(context.Background())
	as.Assign(context.Background())

	require.Len(t, hooked, 1)
	assert.Equal(t, "zz", hooked[0].SessionID)
}

func TestParseDimension(t *testing.T) {
	d, err := experiment.ParseDimension("cta_color")
	require.NoError(t, err)
	assert.Equal(t, []string{"blue", "green", "purple"}, d.Arms())

	_, err = experiment.ParseDimension("font")
	assert.Error(t, err)
}
