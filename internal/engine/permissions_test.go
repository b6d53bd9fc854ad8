package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/healthbridge/internal/domain"
)

// fakeFlow scripts the external consent hand-off.
type fakeFlow struct {
	store        *fakeStore
	grantOnAwait []string

	began    [][]string
	awaited  []string
	beginErr error
	awaitErr error
}

func (f *fakeFlow) Begin(ctx context.Context, tokens []string) (string, error) {
	if f.beginErr != nil {
		return "", f.beginErr
	}
	f.began = append(f.began, append([]string(nil), tokens...))
	return "ticket-1", nil
}

func (f *fakeFlow) Await(ctx context.Context, ticket string) error {
	f.awaited = append(f.awaited, ticket)
	if f.awaitErr != nil {
		return f.awaitErr
	}
	if f.store != nil && len(f.grantOnAwait) > 0 {
		return f.store.Grant(ctx, f.grantOnAwait)
	}
	return nil
}

func TestRequiredTokensRejectsUnknownAndReadOnlyWrites(t *testing.T) {
	_, err := requiredTokens([]string{"steps", "bloodGlucose"}, nil)
	requireValidation(t, err)

	_, err = requiredTokens(nil, []string{"workouts"})
	requireValidation(t, err)

	_, err = requiredTokens(nil, []string{"sleep"})
	requireValidation(t, err)

	tokens, err := requiredTokens([]string{"steps", "workouts", "steps"}, []string{"steps"})
	require.NoError(t, err)
	require.Equal(t, []string{"steps:read", "exercise:read", "steps:write"}, tokens)
}

func TestCheckAuthorizationPartitionsCapabilities(t *testing.T) {
	f := newFakeStore("steps:read", "weight:write")
	e := newTestEngine(f)

	status, err := e.CheckAuthorization(context.Background(),
		[]string{"steps", "workouts", "heart-rate"},
		[]string{"weight", "steps"},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"steps"}, status.ReadAuthorized)
	require.Equal(t, []string{"workouts", "heart-rate"}, status.ReadDenied)
	require.Equal(t, []string{"weight"}, status.WriteAuthorized)
	require.Equal(t, []string{"steps"}, status.WriteDenied)
}

func TestCheckAuthorizationValidatesBeforeStoreAccess(t *testing.T) {
	f := newFakeStore()
	e := newTestEngine(f)

	_, err := e.CheckAuthorization(context.Background(), []string{"nope"}, nil)
	requireValidation(t, err)
	require.Zero(t, f.grantCalls)
}

func TestRequestAuthorizationFullyGrantedIsSynchronous(t *testing.T) {
	f := newFakeStore("steps:read", "exercise:read")
	flow := &fakeFlow{store: f}
	e := New(f, flow)

	status, err := e.RequestAuthorization(context.Background(), []string{"steps", "workouts"}, nil)
	require.NoError(t, err)
	require.Empty(t, flow.began)
	require.Empty(t, flow.awaited)
	require.Equal(t, []string{"steps", "workouts"}, status.ReadAuthorized)
	require.Empty(t, status.ReadDenied)
}

func TestRequestAuthorizationPartialGrantTriggersHandOff(t *testing.T) {
	f := newFakeStore("steps:read")
	flow := &fakeFlow{store: f, grantOnAwait: []string{"exercise:read"}}
	e := New(f, flow)

	status, err := e.RequestAuthorization(context.Background(), []string{"steps", "workouts"}, nil)
	require.NoError(t, err)
	// Only the missing tokens go through the consent flow.
	require.Equal(t, [][]string{{"exercise:read"}}, flow.began)
	require.Equal(t, []string{"ticket-1"}, flow.awaited)
	require.Equal(t, []string{"steps", "workouts"}, status.ReadAuthorized)
}

func TestRequestAuthorizationDenialLandsInDeniedPartition(t *testing.T) {
	f := newFakeStore("steps:read")
	flow := &fakeFlow{store: f} // user grants nothing
	e := New(f, flow)

	status, err := e.RequestAuthorization(context.Background(), []string{"steps", "workouts"}, nil)
	require.NoError(t, err)
	require.Len(t, flow.began, 1)
	require.Equal(t, []string{"steps"}, status.ReadAuthorized)
	require.Equal(t, []string{"workouts"}, status.ReadDenied)
}

func TestRequestAuthorizationFlowFailureIsPlatformError(t *testing.T) {
	f := newFakeStore()
	flow := &fakeFlow{store: f, awaitErr: errors.New("consent activity crashed")}
	e := New(f, flow)

	_, err := e.RequestAuthorization(context.Background(), []string{"steps"}, nil)
	var platform *domain.PlatformError
	require.ErrorAs(t, err, &platform)
}
