package question

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/tests"
)

const questionsBody = `{"data":{"questions":[
	{"id":"q1","text":"2 + 2 = ?","type":"MCQ","subjectId":"sub1","options":[{"id":"a","text":"3"},{"id":"b","text":"4","isCorrect":true}],"difficulty":"easy","points":2},
	{"id":"q2","text":"The sun is a star","type":"true_false","answer":"true","subjectId":"sub2"}
]},"meta":{"page":2,"pages":4,"count":35,"pageSize":10}}`

func setup() (*Service, *testutil.FakeAPI) {
	api := testutil.NewFakeAPI()
	return NewService(api, core.NewValidator(), testutil.NewLogger()), api
}

func mcq() Draft {
	return Draft{
		Text:      "Capital of India?",
		Type:      TypeMCQ,
		SubjectID: "sub3",
		Options:   []Option{{Text: "Mumbai"}, {Text: "New Delhi", IsCorrect: true}, {Text: "Kolkata"}},
	}
}

func TestService_FetchQuestions(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/missions/questions", questionsBody)

	svc.Slice().SetFilters(map[string]string{"subjectId": "sub1", "difficulty": "easy"})
	require.NoError(t, svc.FetchQuestions(context.Background()).Wait())

	items := svc.Slice().Items()
	require.Len(t, items, 2)
	assert.Equal(t, TypeMCQ, items[0].Type)
	correct, ok := items[0].CorrectOption()
	require.True(t, ok)
	assert.Equal(t, "b", correct.ID)
	assert.Equal(t, Medium, items[1].Difficulty)
	assert.Equal(t, 1, items[1].Points)
	_, ok = items[1].CorrectOption()
	assert.False(t, ok)

	page := svc.Slice().Pagination()
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 35, page.TotalItems)
	assert.Equal(t, "difficulty=easy&subjectId=sub1", api.Last().Query.Encode())
}

func TestService_crud(t *testing.T) {
	svc, api := setup()
	api.On(http.MethodGet, "/missions/questions", questionsBody)
	api.On(http.MethodPost, "/missions/questions", `{"question":{"id":"q3","text":"Capital of India?","type":"mcq","subjectId":"sub3"}}`)
	api.On(http.MethodPut, "/missions/questions/q2", `{"data":{"id":"q2","text":"The moon is a star","type":"true_false","answer":"false","subjectId":"sub2"}}`)
	api.On(http.MethodDelete, "/missions/questions/q1", ``)
	ctx := context.Background()

	require.NoError(t, svc.FetchQuestions(ctx).Wait())
	require.NoError(t, svc.CreateQuestion(ctx, mcq()).Wait())
	assert.Len(t, svc.Slice().Items(), 3)

	d := Draft{Text: "The moon is a star", Type: "True_False", Answer: "FALSE", SubjectID: "sub2", Options: []Option{{Text: "x"}}}
	require.NoError(t, svc.UpdateQuestion(ctx, "q2", d).Wait())
	sent := api.Last().Body.(Draft)
	assert.Equal(t, "false", sent.Answer)
	assert.Nil(t, sent.Options)
	assert.Equal(t, "The moon is a star", svc.Slice().Items()[1].Text)

	require.NoError(t, svc.DeleteQuestion(ctx, "q1").Wait())
	items := svc.Slice().Items()
	assert.Equal(t, []string{"q2", "q3"}, []string{items[0].ID, items[1].ID})
}

func TestDraft_Validate(t *testing.T) {
	tests := []struct {
		name    string
		draft   func() Draft
		wantErr string
	}{
		{name: "valid mcq", draft: mcq},
		{
			name:    "unknown type",
			draft:   func() Draft { d := mcq(); d.Type = "essay"; return d },
			wantErr: "type: type must be one of [mcq true_false short_answer]",
		},
		{
			name:    "single option",
			draft:   func() Draft { d := mcq(); d.Options = d.Options[1:2]; return d },
			wantErr: "options: a multiple choice question needs at least 2 options",
		},
		{
			name:    "no correct option",
			draft:   func() Draft { d := mcq(); d.Options = []Option{{Text: "a"}, {Text: "b"}}; return d },
			wantErr: "options: exactly one option must be correct",
		},
		{
			name: "two correct options",
			draft: func() Draft {
				d := mcq()
				d.Options = []Option{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}}
				return d
			},
			wantErr: "options: exactly one option must be correct",
		},
		{
			name:    "blank option",
			draft:   func() Draft { d := mcq(); d.Options[0].Text = " "; return d },
			wantErr: "text: this field cannot be blank",
		},
		{
			name:    "true/false without answer",
			draft:   func() Draft { return Draft{Text: "Water boils at 100C", Type: TypeTrueFalse, SubjectID: "sub2"} },
			wantErr: "answer: answer must be true or false",
		},
		{
			name:    "short answer without answer",
			draft:   func() Draft { return Draft{Text: "Name a prime", Type: TypeShortAnswer, SubjectID: "sub1"} },
			wantErr: "answer: this field is required",
		},
		{
			name:    "too many points",
			draft:   func() Draft { d := mcq(); d.Points = 500; return d },
			wantErr: "points: points must be 100 or less",
		},
	}
	v := core.NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.draft()
			err := d.Validate(v)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, core.IsValidation(err))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}
