package subject

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/tests"
)

const subjectsBody = `[
	{"id":"sub1","name":"Mathematics","code":"math7","grade":"7","teachers":["t1"],"questionCount":120},
	{"id":"sub2","name":"Science","code":"SCI7"}
]`

func setup() (*Service, *testutil.FakeAPI) {
	api := testutil.NewFakeAPI()
	return NewService(api, core.NewValidator(), testutil.NewLogger()), api
}

func TestService_FetchSubjects(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/subjects", subjectsBody)

	require.NoError(t, svc.FetchSubjects(context.Background()).Wait())
	items := svc.Slice().Items()
	require.Len(t, items, 2)
	assert.Equal(t, "MATH7", items[0].Code)
	assert.Equal(t, []string{}, items[1].TeacherIDs)
	// a bare array carries no pagination
	assert.Zero(t, svc.Slice().Pagination().TotalItems)

	sub, ok := svc.Lookup("sub2")
	require.True(t, ok)
	assert.Equal(t, "Science", sub.Name)
	_, ok = svc.Lookup("sub9")
	assert.False(t, ok)
}

func TestService_crud(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/subjects", subjectsBody)
	api.On(http.MethodPost, "/subjects", `{"data":{"subject":{"id":"sub3","name":"English","code":"ENG7"}}}`)
	api.On(http.MethodPut, "/subjects/sub2", `{"subject":{"id":"sub2","name":"General Science","code":"SCI7"}}`)
	api.On(http.MethodDelete, "/subjects/sub1", `{}`)
	ctx := context.Background()

	require.NoError(t, svc.FetchSubjects(ctx).Wait())
	require.NoError(t, svc.CreateSubject(ctx, NewSubject{Name: "English", Code: " eng7 ", Color: "#1e88e5"}).Wait())
	assert.Equal(t, "ENG7", api.Last().Body.(NewSubject).Code)
	assert.Len(t, svc.Slice().Items(), 3)

	require.NoError(t, svc.UpdateSubject(ctx, "sub2", UpdateSubject{Name: "General Science"}).Wait())
	assert.Equal(t, "General Science", svc.Slice().Items()[1].Name)

	require.NoError(t, svc.DeleteSubject(ctx, "sub1").Wait())
	items := svc.Slice().Items()
	assert.Equal(t, []string{"sub2", "sub3"}, []string{items[0].ID, items[1].ID})
}

func TestService_CreateSubject_validation(t *testing.T) {
	tests := []struct {
		name    string
		ns      NewSubject
		wantErr string
	}{
		{name: "missing code", ns: NewSubject{Name: "English"}, wantErr: "code: this field is required"},
		{name: "bad code", ns: NewSubject{Name: "English", Code: "ENG-7"}, wantErr: "code: code can only contain alphanumeric characters"},
		{name: "bad color", ns: NewSubject{Name: "English", Code: "ENG7", Color: "blue"}, wantErr: "color: color must be a valid HEX color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api := setup()
			err := svc.CreateSubject(context.Background(), tt.ns).Wait()
			assert.True(t, core.IsValidation(err))
			assert.Equal(t, tt.wantErr, svc.Slice().Error(OpCreate))
			assert.Empty(t, api.Requests())
		})
	}
}

func TestService_FetchSubject_failure(t *testing.T) {
	svc, api := setup()
	api.Fail(http.MethodGet, "/subjects/sub1", core.ErrCannotConnect)

	err := svc.FetchSubject(context.Background(), "sub1").Wait()
	assert.True(t, core.IsNetwork(err))
	assert.Equal(t, core.ErrCannotConnect.Error(), svc.Slice().Error(OpGet))
	_, ok := svc.Slice().Current()
	assert.False(t, ok)
}
