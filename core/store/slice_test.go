package store

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/gyaanbuddy/core"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (it item) EntityID() string { return it.ID }

type extras struct {
	Stats map[string]int
}

func newTestSlice() *Slice[item, extras] {
	return NewSlice[item]("items", Config[extras]{
		Keys:    []string{"list", "create", "update", "delete"},
		Filters: map[string]string{"search": "", "status": "all"},
	})
}

func TestSlice_initialState(t *testing.T) {
	s := newTestSlice()
	st := s.Snapshot()

	assert.Empty(t, st.Items)
	assert.NotNil(t, st.Items)
	assert.Nil(t, st.Current)
	assert.Len(t, st.Loading, 4)
	assert.Len(t, st.Errors, 4)
	for _, key := range []string{"list", "create", "update", "delete"} {
		assert.False(t, st.Loading[key], key)
		assert.Equal(t, "", st.Errors[key], key)
	}
	assert.Equal(t, map[string]string{"search": "", "status": "all"}, st.Filters)
	assert.False(t, s.Busy())
	assert.False(t, s.HasError())
}

func TestSlice_Dispatch(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		work      Work[item, extras]
		wantErr   string
		wantItems []item
	}{
		{
			name: "success",
			work: func(ctx context.Context) (Reducer[item, extras], error) {
				return func(st *State[item, extras]) {
					st.ReplaceItems([]item{{ID: "1", Name: "a"}})
				}, nil
			},
			wantItems: []item{{ID: "1", Name: "a"}},
		},
		{
			name: "nil reducer",
			work: func(ctx context.Context) (Reducer[item, extras], error) {
				return nil, nil
			},
			wantItems: []item{},
		},
		{
			name: "failure",
			work: func(ctx context.Context) (Reducer[item, extras], error) {
				return nil, errors.Wrap(errBoom, "fetching items")
			},
			wantErr:   "fetching items: boom",
			wantItems: []item{},
		},
		{
			name: "api error",
			work: func(ctx context.Context) (Reducer[item, extras], error) {
				return nil, errors.Wrap(&core.APIError{Status: 500, Message: "server exploded"}, "fetching items")
			},
			wantErr:   "server exploded",
			wantItems: []item{},
		},
		{
			name: "network error",
			work: func(ctx context.Context) (Reducer[item, extras], error) {
				return nil, errors.Wrap(core.ErrCannotConnect, "fetching items")
			},
			wantErr:   "cannot connect to server",
			wantItems: []item{},
		},
		{
			name: "panicking work",
			work: func(ctx context.Context) (Reducer[item, extras], error) {
				panic("oops")
			},
			wantErr:   "unexpected failure: oops",
			wantItems: []item{},
		},
		{
			name: "panicking reducer",
			work: func(ctx context.Context) (Reducer[item, extras], error) {
				return func(st *State[item, extras]) {
					st.Items = append(st.Items, item{ID: "x"})
					panic("oops")
				}, nil
			},
			wantErr:   "unexpected failure: oops",
			wantItems: []item{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSlice()
			_ = s.Run(context.Background(), "list", tt.work)

			assert.False(t, s.Loading("list"))
			assert.Equal(t, tt.wantErr, s.Error("list"))
			assert.Equal(t, tt.wantItems, s.Items())
		})
	}
}

func TestSlice_Dispatch_pendingIsSynchronous(t *testing.T) {
	s := newTestSlice()
	_ = s.Run(context.Background(), "list", func(ctx context.Context) (Reducer[item, extras], error) {
		return nil, errors.New("first failure")
	})
	assert.Equal(t, "first failure", s.Error("list"))

	release := make(chan struct{})
	op := s.Dispatch(context.Background(), "list", func(ctx context.Context) (Reducer[item, extras], error) {
		<-release
		return nil, nil
	})

	// observed before the work had a chance to run
	assert.True(t, s.Loading("list"))
	assert.Equal(t, "", s.Error("list"))
	assert.True(t, s.Busy())
	assert.False(t, s.Loading("create"))

	close(release)
	assert.NoError(t, op.Wait())
	assert.False(t, s.Loading("list"))
	assert.False(t, s.Busy())
}

func TestSlice_Dispatch_unknownKey(t *testing.T) {
	s := newTestSlice()
	_ = s.Run(context.Background(), "export", func(ctx context.Context) (Reducer[item, extras], error) {
		return nil, errors.New("nope")
	})

	st := s.Snapshot()
	assert.Len(t, st.Loading, 5)
	assert.Len(t, st.Errors, 5)
	assert.Equal(t, "nope", s.Error("export"))
	assert.Equal(t, "nope", s.FirstError())
}

func TestSlice_Dispatch_staleResponse(t *testing.T) {
	s := newTestSlice()

	slow := make(chan struct{})
	first := s.Dispatch(context.Background(), "list", func(ctx context.Context) (Reducer[item, extras], error) {
		<-slow
		return func(st *State[item, extras]) {
			st.ReplaceItems([]item{{ID: "old"}})
		}, nil
	})
	second := s.Dispatch(context.Background(), "list", func(ctx context.Context) (Reducer[item, extras], error) {
		return func(st *State[item, extras]) {
			st.ReplaceItems([]item{{ID: "new"}})
		}, nil
	})

	assert.NoError(t, second.Wait())
	assert.False(t, second.Stale())
	assert.False(t, s.Loading("list"))

	close(slow)
	assert.NoError(t, first.Wait())
	assert.True(t, first.Stale())
	assert.Equal(t, []item{{ID: "new"}}, s.Items())
}

func TestSlice_Dispatch_staleFailure(t *testing.T) {
	s := newTestSlice()

	slow := make(chan struct{})
	first := s.Dispatch(context.Background(), "list", func(ctx context.Context) (Reducer[item, extras], error) {
		<-slow
		return nil, errors.New("late failure")
	})
	release := make(chan struct{})
	second := s.Dispatch(context.Background(), "list", func(ctx context.Context) (Reducer[item, extras], error) {
		<-release
		return nil, nil
	})

	close(slow)
	assert.Error(t, first.Wait())
	assert.True(t, first.Stale())
	assert.True(t, s.Loading("list"), "latest dispatch still in flight")
	assert.Equal(t, "", s.Error("list"))

	close(release)
	assert.NoError(t, second.Wait())
	assert.False(t, s.Loading("list"))
}

func TestSlice_Dispatch_independentKeys(t *testing.T) {
	s := newTestSlice()

	release := make(chan struct{})
	list := s.Dispatch(context.Background(), "list", func(ctx context.Context) (Reducer[item, extras], error) {
		<-release
		return nil, nil
	})
	err := s.Run(context.Background(), "create", func(ctx context.Context) (Reducer[item, extras], error) {
		return nil, errors.New("duplicate name")
	})

	assert.Error(t, err)
	assert.True(t, s.Loading("list"))
	assert.Equal(t, "duplicate name", s.Error("create"))
	assert.Equal(t, "", s.Error("list"))

	close(release)
	_ = list.Wait()
}

func TestSlice_ClearError(t *testing.T) {
	fail := func(ctx context.Context) (Reducer[item, extras], error) {
		return nil, errors.New("failed")
	}

	tests := []struct {
		name string
		key  string
		want map[string]string
	}{
		{
			name: "single key",
			key:  "create",
			want: map[string]string{"list": "failed", "create": "", "update": "failed", "delete": ""},
		},
		{
			name: "all",
			key:  AllKeys,
			want: map[string]string{"list": "", "create": "", "update": "", "delete": ""},
		},
		{
			name: "unknown key",
			key:  "lol",
			want: map[string]string{"list": "failed", "create": "failed", "update": "failed", "delete": ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSlice()
			for _, key := range []string{"list", "create", "update"} {
				_ = s.Run(context.Background(), key, fail)
			}
			s.ClearError(tt.key)
			assert.Equal(t, tt.want, s.Snapshot().Errors)
		})
	}
}

func TestSlice_Filters(t *testing.T) {
	s := newTestSlice()

	s.SetFilters(map[string]string{"search": "ama"})
	assert.Equal(t, map[string]string{"search": "ama", "status": "all"}, s.Filters())

	s.SetFilters(map[string]string{"grade": "5"})
	assert.Equal(t, map[string]string{"search": "ama", "status": "all", "grade": "5"}, s.Filters())

	q := s.Query()
	assert.Equal(t, "grade=5&search=ama&status=all", q.Encode())

	s.ClearFilters()
	assert.Equal(t, map[string]string{"search": "", "status": "all"}, s.Filters())
	assert.Equal(t, "status=all", s.Query().Encode())

	// filters are not shared with callers
	f := s.Filters()
	f["search"] = "mutated"
	assert.Equal(t, "", s.Filters()["search"])
}

func TestSlice_Reset(t *testing.T) {
	s := NewSlice[item]("items", Config[extras]{
		Keys:  []string{"list"},
		Extra: extras{Stats: map[string]int{}},
	})

	_ = s.Update(func(st *State[item, extras]) {
		st.ReplaceItems([]item{{ID: "1"}})
		st.SetCurrent(item{ID: "1"})
		st.Extra = extras{Stats: map[string]int{"total": 1}}
	})
	s.SetFilters(map[string]string{"search": "x"})

	release := make(chan struct{})
	op := s.Dispatch(context.Background(), "list", func(ctx context.Context) (Reducer[item, extras], error) {
		<-release
		return func(st *State[item, extras]) {
			st.ReplaceItems([]item{{ID: "late"}})
		}, nil
	})

	s.Reset()
	close(release)
	_ = op.Wait()

	st := s.Snapshot()
	assert.True(t, op.Stale())
	assert.Empty(t, st.Items)
	assert.Nil(t, st.Current)
	assert.False(t, st.Loading["list"])
	assert.Equal(t, "", st.Filters["search"])
	assert.Empty(t, st.Extra.Stats)
}

func TestSlice_Reset_failureStillRecorded(t *testing.T) {
	s := newTestSlice()

	release := make(chan struct{})
	op := s.Dispatch(context.Background(), "get", func(ctx context.Context) (Reducer[item, extras], error) {
		<-release
		return nil, &core.APIError{Status: http.StatusUnauthorized, Message: "Session expired"}
	})

	s.Reset()
	assert.True(t, s.Loading("get"))
	close(release)
	err := op.Wait()

	assert.True(t, op.Stale())
	assert.Error(t, err)
	assert.False(t, s.Loading("get"))
	assert.Equal(t, "Session expired", s.Error("get"))

	// a dispatch started after the reset settles normally
	_ = s.Dispatch(context.Background(), "get", func(ctx context.Context) (Reducer[item, extras], error) {
		return func(st *State[item, extras]) { st.ReplaceItems([]item{{ID: "new"}}) }, nil
	}).Wait()
	assert.Equal(t, "", s.Error("get"))
	assert.Len(t, s.Items(), 1)
}

func TestSlice_concurrentDispatch(t *testing.T) {
	s := newTestSlice()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Run(context.Background(), "create", func(ctx context.Context) (Reducer[item, extras], error) {
				time.Sleep(time.Millisecond)
				return nil, nil
			})
			_ = s.Items()
			_ = s.Busy()
		}(i)
	}
	wg.Wait()
	assert.False(t, s.Busy())
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: errors.New("boom"), want: "boom"},
		{name: "blank", err: errors.New("  "), want: "unknown error"},
		{name: "api error", err: errors.Wrap(&core.APIError{Status: 422, Message: "email taken"}, "creating"), want: "email taken"},
		{name: "api error without message", err: &core.APIError{Status: 503}, want: "HTTP error, status 503"},
		{name: "timeout", err: errors.Wrap(core.ErrRequestTimeout, "GET /students"), want: "request timeout"},
		{
			name: "validation",
			err:  core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"}),
			want: "name: this field is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}
