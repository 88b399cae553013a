package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minato-cat-support/internal/ports/auth"
)

type testEffects struct {
	known    map[string]bool
	applied  []Report
	applyErr error
}

func (e *testEffects) CatExists(ctx context.Context, catID string) (bool, error) {
	return e.known[catID], nil
}

func (e *testEffects) ApplyReport(ctx context.Context, r Report) error {
	if e.applyErr != nil {
		return e.applyErr
	}
	e.applied = append(e.applied, r)
	return nil
}

func newTestService(effects *testEffects) (*Service, *testRepo) {
	repo := &testRepo{}
	svc := NewService(NewStore(repo, nil, nil, nil), effects, nil)
	svc.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return svc, repo
}

func TestSubmit_PersistsAndAppliesEffects(t *testing.T) {
	effects := &testEffects{known: map[string]bool{"cat-1": true}}
	svc, repo := newTestService(effects)

	r, err := svc.Submit(context.Background(), auth.Actor{ID: "user-01", Role: auth.RoleGeneral}, SubmitInput{
		CatID:     "cat-1",
		Fed:       true,
		Condition: ConditionInjured,
		Notes:     "  right paw  ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "user-01", r.ReporterID)
	assert.Equal(t, int64(1_700_000_000_000), r.Timestamp)
	assert.Equal(t, "right paw", r.Notes)
	require.Len(t, repo.items, 1)
	require.Len(t, effects.applied, 1)
	assert.Equal(t, r.ID, effects.applied[0].ID)
}

func TestSubmit_KeepsCallerTimestamp(t *testing.T) {
	svc, _ := newTestService(&testEffects{known: map[string]bool{"cat-1": true}})

	r, err := svc.Submit(context.Background(), auth.Actor{ID: "u"}, SubmitInput{CatID: "cat-1", Timestamp: 42})
	require.NoError(t, err)
	assert.Equal(t, int64(42), r.Timestamp)
	assert.Equal(t, ConditionGood, r.Condition)
}

func TestSubmit_Validation(t *testing.T) {
	svc, repo := newTestService(&testEffects{known: map[string]bool{"cat-1": true}})
	ctx := context.Background()

	_, err := svc.Submit(ctx, auth.Actor{}, SubmitInput{CatID: "cat-1"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Submit(ctx, auth.Actor{ID: "u"}, SubmitInput{CatID: "cat-1", Condition: "dead"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Submit(ctx, auth.Actor{ID: "u"}, SubmitInput{CatID: "ghost"})
	assert.ErrorIs(t, err, ErrUnknownCat)

	assert.Empty(t, repo.items)
}

func TestSubmit_EffectFailureDoesNotFailReport(t *testing.T) {
	effects := &testEffects{known: map[string]bool{"cat-1": true}, applyErr: errors.New("roster down")}
	svc, repo := newTestService(effects)

	_, err := svc.Submit(context.Background(), auth.Actor{ID: "u"}, SubmitInput{CatID: "cat-1", Fed: true})
	require.NoError(t, err)
	assert.Len(t, repo.items, 1)
}
