package student

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/tests"
)

const studentsBody = `{"data":[
	{"id":"s1","name":"Aarav Shah","rollNumber":"7A01","grade":"7","classId":"c1","xp":1200,"level":4},
	{"id":"s2","name":"Diya Menon","rollNumber":"7A02","grade":"7","classId":"c1","status":"inactive"}
],"pagination":{"page":1,"totalPages":3,"totalItems":42,"perPage":20}}`

func setup() (*Service, *testutil.FakeAPI) {
	api := testutil.NewFakeAPI()
	return NewService(api, core.NewValidator(), testutil.NewLogger()), api
}

func TestService_FetchStudents(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/students", studentsBody)

	svc.Slice().SetFilters(map[string]string{"classId": "c1"})
	require.NoError(t, svc.FetchStudents(context.Background()).Wait())

	items := svc.Slice().Items()
	require.Len(t, items, 2)
	assert.Equal(t, StatusActive, items[0].Status)
	assert.Equal(t, StatusInactive, items[1].Status)
	assert.Equal(t, 1, items[1].Level)
	assert.Equal(t, 42, svc.Slice().Pagination().TotalItems)
	assert.Equal(t, "classId=c1&limit=20&page=1", api.Last().Query.Encode())
}

func TestService_crud(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/students", studentsBody)
	api.On(http.MethodPost, "/students", `{"student":{"id":"s3","name":"Ishaan","rollNumber":"7A03","grade":"7"}}`)
	api.On(http.MethodPut, "/students/s1", `{"data":{"student":{"id":"s1","name":"Aarav S.","grade":"7","xp":1300}}}`)
	api.On(http.MethodDelete, "/students/s2", ``)
	api.On(http.MethodGet, "/students/s2/performance", `{"data":{"averageScore":71.5}}`)
	ctx := context.Background()

	require.NoError(t, svc.FetchStudents(ctx).Wait())
	require.NoError(t, svc.FetchPerformance(ctx, "s2").Wait())

	require.NoError(t, svc.CreateStudent(ctx, NewStudent{Name: "Ishaan", RollNumber: "7A03", Grade: "7"}).Wait())
	assert.Len(t, svc.Slice().Items(), 3)

	require.NoError(t, svc.UpdateStudent(ctx, "s1", UpdateStudent{Name: "Aarav S."}).Wait())
	items := svc.Slice().Items()
	assert.Len(t, items, 3)
	assert.Equal(t, 1300, items[0].XP)

	require.NoError(t, svc.DeleteStudent(ctx, "s2").Wait())
	items = svc.Slice().Items()
	assert.Equal(t, []string{"s1", "s3"}, []string{items[0].ID, items[1].ID})
	_, ok := svc.Performance("s2")
	assert.False(t, ok)
}

func TestService_CreateStudent_validation(t *testing.T) {
	tests := []struct {
		name    string
		ns      NewStudent
		wantErr string
	}{
		{name: "missing roll number", ns: NewStudent{Name: "Ishaan", Grade: "7"}, wantErr: "rollNumber: this field is required"},
		{name: "bad roll number", ns: NewStudent{Name: "Ishaan", RollNumber: "7-A/03", Grade: "7"}, wantErr: "rollNumber: only alphanumeric characters and underscores are allowed"},
		{name: "bad email", ns: NewStudent{Name: "Ishaan", RollNumber: "7A03", Grade: "7", Email: "ishaan@"}, wantErr: "email: email must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api := setup()
			err := svc.CreateStudent(context.Background(), tt.ns).Wait()
			assert.True(t, core.IsValidation(err))
			assert.Equal(t, tt.wantErr, svc.Slice().Error(OpCreate))
			assert.Empty(t, api.Requests())
		})
	}
}

func TestService_ImportStudents(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodPost, "/students/import", `{"success":true,"data":{"imported":2,"failed":1,"errors":[{"row":3,"message":"missing name"}]}}`)
	api.On(http.MethodGet, "/students", studentsBody)

	csv := strings.NewReader("name,rollNumber,grade\nAarav Shah,7A01,7\nDiya Menon,7A02,7\n,7A03,7\n")
	require.NoError(t, svc.ImportStudents(context.Background(), "/tmp/class7.csv", csv, "c1").Wait())

	res := svc.Slice().Extra().ImportResult
	require.NotNil(t, res)
	assert.Equal(t, ImportResult{Imported: 2, Failed: 1, Errors: []ImportRowError{{Row: 3, Message: "missing name"}}}, *res)
	assert.Len(t, svc.Slice().Items(), 2)

	upload := api.Requests()[0]
	require.NotNil(t, upload.Form)
	assert.Equal(t, "c1", upload.Form.Fields["classId"])
	assert.Equal(t, "class7.csv", upload.Form.Files[0].Filename)
}

func TestService_ImportStudents_refreshFails(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodPost, "/students/import", `{"success":true,"data":{"imported":2,"failed":0,"errors":[]}}`)
	api.Fail(http.MethodGet, "/students", &core.APIError{Status: http.StatusServiceUnavailable, Message: "Service unavailable"})

	csv := strings.NewReader("name,rollNumber,grade\nAarav Shah,7A01,7\nDiya Menon,7A02,7\n")
	require.NoError(t, svc.ImportStudents(context.Background(), "class7.csv", csv, "").Wait())

	res := svc.Slice().Extra().ImportResult
	require.NotNil(t, res)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, "", svc.Slice().Error(OpImport))
	assert.Equal(t, "Service unavailable", svc.Slice().Error(OpList))
	assert.False(t, svc.Slice().Loading(OpImport))
	assert.False(t, svc.Slice().Loading(OpList))

	var uploads int
	for _, req := range api.Requests() {
		if req.Method == http.MethodPost {
			uploads++
		}
	}
	assert.Equal(t, 1, uploads)
}

func TestService_ImportStudents_notCSV(t *testing.T) {
	svc, api := setup()
	err := svc.ImportStudents(context.Background(), "students.xlsx", strings.NewReader(""), "").Wait()
	assert.Equal(t, ErrNotCSV, err)
	assert.Equal(t, "file: only .csv files can be imported", svc.Slice().Error(OpImport))
	assert.Empty(t, api.Requests())
}

func TestService_FetchPerformance(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/students/s1/performance", `{"data":{"performance":{"studentId":"s1","averageScore":84,"accuracy":0.9,"missionsCompleted":12,"subjects":[{"subject":"Maths","score":91}]}}}`)

	require.NoError(t, svc.FetchPerformance(context.Background(), "s1").Wait())
	perf, ok := svc.Performance("s1")
	require.True(t, ok)
	assert.Equal(t, 84.0, perf.AverageScore)
	assert.Equal(t, []SubjectScore{{Subject: "Maths", Score: 91}}, perf.Subjects)

	svc.Slice().Reset()
	_, ok = svc.Performance("s1")
	assert.False(t, ok)
}
