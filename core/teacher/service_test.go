package teacher

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/store"
	"github.com/trezcool/gyaanbuddy/tests"
)

const teachersBody = `{"success":true,"data":{"teachers":[
	{"id":"t1","name":"Meera Iyer","email":"meera@school.in","subjects":["Maths"],"status":"active","dashboardUsage":82.5},
	{"id":"t2","name":"Arjun Das","email":"arjun@school.in"}
],"pagination":{"page":1,"totalPages":1,"total":2,"limit":10}}}`

func setup() (*Service, *testutil.FakeAPI) {
	api := testutil.NewFakeAPI()
	return NewService(api, core.NewValidator(), testutil.NewLogger()), api
}

func TestService_FetchTeachers(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/users/teachers", teachersBody)

	svc.Slice().SetFilters(map[string]string{"search": "a", "status": "active"})
	require.NoError(t, svc.FetchTeachers(context.Background()).Wait())

	items := svc.Slice().Items()
	require.Len(t, items, 2)
	assert.Equal(t, 82.5, items[0].DashboardUsage)
	// defaults of a sparse record
	assert.Equal(t, Teacher{ID: "t2", Name: "Arjun Das", Email: "arjun@school.in", Subjects: []string{}, Classes: []string{}, Status: StatusActive}, items[1])

	assert.Equal(t, store.Pagination{Page: 1, TotalPages: 1, TotalItems: 2, PerPage: 10}, svc.Slice().Pagination())
	assert.Equal(t, "search=a&status=active", api.Last().Query.Encode())
}

func TestService_FetchTeachers_lifecycle(t *testing.T) {
	svc, api := setup()
	api.Respond(http.MethodGet, "/users/teachers", testutil.Response{Body: teachersBody, Delay: 30 * time.Millisecond})

	op := svc.FetchTeachers(context.Background())
	assert.True(t, svc.Slice().Loading(OpList))
	assert.Equal(t, "", svc.Slice().Error(OpList))

	require.NoError(t, op.Wait())
	assert.False(t, svc.Slice().Loading(OpList))
	assert.Len(t, svc.Slice().Items(), 2)
}

func TestService_crud(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/users/teachers", teachersBody)
	api.On(http.MethodPost, "/users/teachers", `{"data":{"teacher":{"id":"t3","name":"Kavya","email":"kavya@school.in"}}}`)
	api.On(http.MethodPut, "/users/teachers/t1", `{"data":{"id":"t1","name":"Meera I.","email":"meera@school.in","status":"inactive"}}`)
	api.On(http.MethodDelete, "/users/teachers/t2", `{"success":true}`)
	ctx := context.Background()

	require.NoError(t, svc.FetchTeachers(ctx).Wait())

	// create: appears exactly once
	require.NoError(t, svc.CreateTeacher(ctx, NewTeacher{Name: " Kavya ", Email: "Kavya@School.in"}).Wait())
	require.NoError(t, svc.CreateTeacher(ctx, NewTeacher{Name: "Kavya", Email: "kavya@school.in"}).Wait())
	items := svc.Slice().Items()
	require.Len(t, items, 3)
	assert.Equal(t, "t3", items[2].ID)
	assert.Equal(t, `{"name":"Kavya","email":"kavya@school.in"}`, testutil.BodyJSON(api.Last()))

	// update: in place, length unchanged
	require.NoError(t, svc.UpdateTeacher(ctx, "t1", UpdateTeacher{Name: "Meera I.", Status: "Inactive"}).Wait())
	items = svc.Slice().Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Meera I.", items[0].Name)
	assert.Equal(t, StatusInactive, items[0].Status)

	// delete: removed by id
	require.NoError(t, svc.DeleteTeacher(ctx, "t2").Wait())
	items = svc.Slice().Items()
	require.Len(t, items, 2)
	assert.Equal(t, []string{"t1", "t3"}, []string{items[0].ID, items[1].ID})
}

func TestService_CreateTeacher_errors(t *testing.T) {
	tests := []struct {
		name    string
		nt      NewTeacher
		fail    error
		wantErr string
	}{
		{name: "missing name", nt: NewTeacher{Email: "a@b.in"}, wantErr: "name: this field is required"},
		{name: "blank name", nt: NewTeacher{Name: "   ", Email: "a@b.in"}, wantErr: "name: this field is required"},
		{
			name:    "duplicate email",
			nt:      NewTeacher{Name: "Kavya", Email: "kavya@school.in"},
			fail:    &core.APIError{Status: http.StatusUnprocessableEntity, Message: "Email already exists"},
			wantErr: "Email already exists",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api := setup()
			if tt.fail != nil {
				api.Fail(http.MethodPost, "/users/teachers", tt.fail)
			}

			err := svc.CreateTeacher(context.Background(), tt.nt).Wait()
			assert.Error(t, err)
			assert.Equal(t, tt.wantErr, svc.Slice().Error(OpCreate))
			assert.Empty(t, svc.Slice().Items())
			assert.Equal(t, "", svc.Slice().Error(OpList))
		})
	}
}

func TestService_CreateTeacher_noRecordEchoed(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodPost, "/users/teachers", `{"success":true,"message":"invitation sent"}`)

	require.NoError(t, svc.CreateTeacher(context.Background(), NewTeacher{Name: "Kavya", Email: "kavya@school.in"}).Wait())
	assert.Empty(t, svc.Slice().Items())
	assert.Equal(t, "", svc.Slice().Error(OpCreate))
}

func TestService_FetchTeacher(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/users/teachers/t1", `{"teacher":{"id":"t1","name":"Meera"}}`)
	api.On(http.MethodGet, "/users/teachers/t9", `{"success":false}`)

	require.NoError(t, svc.FetchTeacher(context.Background(), "t1").Wait())
	cur, ok := svc.Slice().Current()
	require.True(t, ok)
	assert.Equal(t, "Meera", cur.Name)

	err := svc.FetchTeacher(context.Background(), "t9").Wait()
	assert.Equal(t, http.StatusNotFound, core.StatusCode(err))
	assert.Equal(t, "teacher not found", svc.Slice().Error(OpGet))
}

func TestService_FetchStats(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/users/teachers/stats", `{"data":{"totalTeachers":12,"activeTeachers":10,"inactiveTeachers":2,"averageDashboardUsage":64.2}}`)

	require.NoError(t, svc.FetchStats(context.Background()).Wait())
	assert.Equal(t, Stats{TotalTeachers: 12, ActiveTeachers: 10, InactiveTeachers: 2, AvgDashboardUsage: 64.2}, svc.Slice().Extra().Stats)
}

func TestService_FetchLeaderboard(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/users/leaderboard", `{"data":{"leaderboard":[{"teacherId":"t1","name":"Meera","score":98},{"teacherId":"t3","name":"Kavya","score":91}]}}`)

	require.NoError(t, svc.FetchLeaderboard(context.Background(), "month").Wait())
	board := svc.Slice().Extra().Leaderboard
	require.Len(t, board, 2)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, 2, board[1].Rank)
	assert.Equal(t, "month", api.Last().Query.Get("period"))
}
