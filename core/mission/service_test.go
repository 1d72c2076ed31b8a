package mission

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/tests"
)

const missionsBody = `{"success":true,"data":{"missions":[
	{"id":"m1","title":"Fractions sprint","subjectId":"sub1","classIds":["c1"],"questionIds":["q1","q4"],"status":"Published","dueDate":"2026-03-01T10:00:00Z","xpReward":50},
	{"id":"m2","title":"Solar system","subjectId":"sub2"}
]}}`

func setup() (*Service, *testutil.FakeAPI) {
	api := testutil.NewFakeAPI()
	return NewService(api, core.NewValidator(), testutil.NewLogger()), api
}

func TestService_FetchMissions(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/missions", missionsBody)

	require.NoError(t, svc.FetchMissions(context.Background()).Wait())
	items := svc.Slice().Items()
	require.Len(t, items, 2)
	assert.Equal(t, StatusPublished, items[0].Status)
	assert.Equal(t, StatusDraft, items[1].Status)
	assert.Equal(t, []string{}, items[1].ClassIDs)

	due := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, items[0].Overdue(due.Add(time.Hour)))
	assert.False(t, items[0].Overdue(due.Add(-time.Hour)))
	assert.False(t, items[1].Overdue(due))
}

func TestService_crud(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/missions", missionsBody)
	api.On(http.MethodPost, "/missions", `{"data":{"mission":{"id":"m3","title":"Verbs","subjectId":"sub3","status":"draft"}}}`)
	api.On(http.MethodPut, "/missions/m2", `{"data":{"mission":{"id":"m2","title":"Solar system","subjectId":"sub2","status":"closed"}}}`)
	api.On(http.MethodDelete, "/missions/m1", `{"success":true}`)
	api.On(http.MethodGet, "/missions/m1/results", `{"data":{"assigned":30,"completed":24}}`)
	ctx := context.Background()

	require.NoError(t, svc.FetchMissions(ctx).Wait())
	require.NoError(t, svc.FetchResults(ctx, "m1").Wait())

	nm := NewMission{Title: " Verbs ", SubjectID: "sub3", ClassIDs: []string{"c1"}, QuestionIDs: []string{"q9"}}
	require.NoError(t, svc.CreateMission(ctx, nm).Wait())
	assert.Len(t, svc.Slice().Items(), 3)
	assert.Equal(t, "Verbs", api.Last().Body.(NewMission).Title)

	require.NoError(t, svc.UpdateMission(ctx, "m2", UpdateMission{Status: "Closed"}).Wait())
	assert.Equal(t, StatusClosed, svc.Slice().Items()[1].Status)
	assert.Equal(t, "closed", api.Last().Body.(UpdateMission).Status)

	require.NoError(t, svc.DeleteMission(ctx, "m1").Wait())
	items := svc.Slice().Items()
	assert.Equal(t, []string{"m2", "m3"}, []string{items[0].ID, items[1].ID})
	_, ok := svc.Results("m1")
	assert.False(t, ok)
}

func TestService_CreateMission_validation(t *testing.T) {
	tests := []struct {
		name    string
		nm      NewMission
		wantErr string
	}{
		{
			name:    "no classes",
			nm:      NewMission{Title: "Verbs", SubjectID: "sub3", QuestionIDs: []string{"q1"}},
			wantErr: "classIds: this field is required",
		},
		{
			name:    "empty questions",
			nm:      NewMission{Title: "Verbs", SubjectID: "sub3", ClassIDs: []string{"c1"}, QuestionIDs: []string{}},
			wantErr: "questionIds: questionIds must contain at least 1 item",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api := setup()
			err := svc.CreateMission(context.Background(), tt.nm).Wait()
			assert.True(t, core.IsValidation(err))
			assert.Equal(t, tt.wantErr, svc.Slice().Error(OpCreate))
			assert.Empty(t, api.Requests())
		})
	}
}

func TestService_PublishMission(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/missions", missionsBody)
	api.On(http.MethodPost, "/missions/m2/publish", `{"success":true}`)
	ctx := context.Background()
	require.NoError(t, svc.FetchMissions(ctx).Wait())

	require.NoError(t, svc.PublishMission(ctx, "m2").Wait())
	assert.Equal(t, StatusPublished, svc.Slice().Items()[1].Status)

	// m1 is already published
	err := svc.PublishMission(ctx, "m1").Wait()
	assert.Equal(t, ErrNotDraft, err)
	assert.Equal(t, "only draft missions can be published", svc.Slice().Error(OpPublish))
	assert.Len(t, api.Requests(), 2)
}

func TestService_FetchResults(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/missions/m1/results", `{"data":{"results":{"assigned":30,"completed":24,"averageScore":78.5,"completionRate":0.8,
		"attempts":[{"studentId":"s1","studentName":"Aarav","score":92,"xpEarned":50}]}}}`)
	api.On(http.MethodGet, "/missions/m2/results", `{"data":{"assigned":0}}`)
	ctx := context.Background()

	require.NoError(t, svc.FetchResults(ctx, "m1").Wait())
	before := svc.Slice().Snapshot()
	require.NoError(t, svc.FetchResults(ctx, "m2").Wait())

	res, ok := svc.Results("m1")
	require.True(t, ok)
	assert.Equal(t, "m1", res.MissionID)
	assert.Equal(t, 0.8, res.CompletionRate)
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, 92.0, res.Attempts[0].Score)

	empty, ok := svc.Results("m2")
	require.True(t, ok)
	assert.Equal(t, []Attempt{}, empty.Attempts)
	// earlier snapshots are not touched by later results
	assert.Len(t, before.Extra.Results, 1)
}
