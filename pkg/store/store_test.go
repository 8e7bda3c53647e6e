package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrymomot/ledgerchat/pkg/logger"
	"github.com/dmitrymomot/ledgerchat/pkg/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testUser() *store.User {
	return &store.User{
		ID:       "u1",
		Email:    "ada@example.com",
		Username: "ada",
		FullName: "Ada Lovelace",
		IsActive: true,
		Companies: []store.Company{
			{ID: "c1", Name: "Analytical Engines Ltd", IsActive: true},
			{ID: "c2", Name: "Difference Works", IsActive: true},
		},
		Organization: store.Organization{ID: "o1", Name: "Babbage Group", IsActive: true},
		Roles:        []string{"accountant"},
		Permissions:  []string{"reports.read"},
	}
}

func newStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()
	s := store.New(append([]store.Option{store.WithLogger(logger.Discard())}, opts...)...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SetUserData(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces token and user together", func(t *testing.T) {
		s := newStore(t)
		user := testUser()

		require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: user, Token: "tok1"}))

		st := s.State()
		assert.Equal(t, "tok1", st.Token)
		assert.Equal(t, uint64(1), st.Version)
		assert.Empty(t, cmp.Diff(user, st.User))
		assert.NotSame(t, user, st.User, "store keeps its own copy")
		assert.Nil(t, st.SelectedCompany)
	})

	t.Run("caller mutations do not leak into the store", func(t *testing.T) {
		s := newStore(t)
		user := testUser()
		require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: user, Token: "tok1"}))

		user.Companies[0].Name = "mutated"
		user.Roles[0] = "admin"

		assert.Equal(t, "Analytical Engines Ltd", s.State().User.Companies[0].Name)
		assert.Equal(t, []string{"accountant"}, s.State().User.Roles)
	})

	t.Run("rejects empty token and nil user", func(t *testing.T) {
		s := newStore(t)
		assert.ErrorIs(t, s.Dispatch(ctx, store.SetUserData{User: testUser()}), store.ErrTokenRequired)
		assert.ErrorIs(t, s.Dispatch(ctx, store.SetUserData{Token: "tok"}), store.ErrUserRequired)
		assert.False(t, s.State().HasSession())
		assert.Equal(t, uint64(0), s.State().Version)
	})

	t.Run("keeps selection only if the new profile lists it", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: testUser(), Token: "tok1"}))
		require.NoError(t, s.Dispatch(ctx, store.SelectCompany{CompanyID: "c2"}))

		require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: testUser(), Token: "tok2"}))
		require.NotNil(t, s.State().SelectedCompany)
		assert.Equal(t, "c2", s.State().SelectedCompany.ID)
		assert.Same(t, &s.State().User.Companies[1], s.State().SelectedCompany)

		other := testUser()
		other.ID = "u2"
		other.Companies = other.Companies[:1]
		require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: other, Token: "tok3"}))
		assert.Nil(t, s.State().SelectedCompany)
	})

	t.Run("drops selection when the user changes", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: testUser(), Token: "tok1"}))
		require.NoError(t, s.Dispatch(ctx, store.SelectCompany{CompanyID: "c1"}))

		// the other user can see c1 as well
		other := testUser()
		other.ID = "u2"
		require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: other, Token: "tok2"}))
		assert.Equal(t, "u2", s.State().User.ID)
		assert.Nil(t, s.State().SelectedCompany)
		assert.False(t, s.State().HasCompany())
	})
}

func TestStore_ClearUser(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: testUser(), Token: "tok1"}))
	require.NoError(t, s.Dispatch(ctx, store.SelectCompany{CompanyID: "c1"}))
	require.NoError(t, s.Dispatch(ctx, store.ClearUser{}))

	st := s.State()
	assert.Empty(t, st.Token)
	assert.Nil(t, st.User)
	assert.Nil(t, st.SelectedCompany, "selected company must not survive logout")
	assert.Equal(t, uint64(3), st.Version)

	// clearing an empty session is a no-op
	require.NoError(t, s.Dispatch(ctx, store.ClearUser{}))
	assert.Same(t, st, s.State())
}

func TestStore_SelectCompany(t *testing.T) {
	ctx := context.Background()

	t.Run("selects a listed company", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: testUser(), Token: "tok1"}))
		require.NoError(t, s.Dispatch(ctx, store.SelectCompany{CompanyID: "c1"}))

		st := s.State()
		require.NotNil(t, st.SelectedCompany)
		assert.Equal(t, "c1", st.SelectedCompany.ID)

		// re-selecting the same company does not create a new snapshot
		require.NoError(t, s.Dispatch(ctx, store.SelectCompany{CompanyID: "c1"}))
		assert.Same(t, st, s.State())
	})

	t.Run("unknown company is rejected and state unchanged", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: testUser(), Token: "tok1"}))
		require.NoError(t, s.Dispatch(ctx, store.SelectCompany{CompanyID: "c1"}))
		before := s.State()

		err := s.Dispatch(ctx, store.SelectCompany{CompanyID: "c9"})
		assert.ErrorIs(t, err, store.ErrInvalidSelection)
		assert.Same(t, before, s.State())
	})

	t.Run("selection without a profile is rejected", func(t *testing.T) {
		s := newStore(t)
		err := s.Dispatch(ctx, store.SelectCompany{CompanyID: "c1"})
		assert.ErrorIs(t, err, store.ErrInvalidSelection)
		assert.False(t, s.State().HasCompany())
	})

	t.Run("empty id deselects", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: testUser(), Token: "tok1"}))
		require.NoError(t, s.Dispatch(ctx, store.SelectCompany{CompanyID: "c1"}))
		require.NoError(t, s.Dispatch(ctx, store.SelectCompany{}))

		assert.False(t, s.State().HasCompany())
		assert.True(t, s.State().HasSession())
	})
}

func TestStore_UpdateUser(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	assert.ErrorIs(t, s.Dispatch(ctx, store.UpdateUser{User: testUser()}), store.ErrNoSession)
	assert.ErrorIs(t, s.Dispatch(ctx, store.UpdateUser{}), store.ErrUserRequired)

	require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: testUser(), Token: "tok1"}))
	require.NoError(t, s.Dispatch(ctx, store.SelectCompany{CompanyID: "c2"}))

	refreshed := testUser()
	refreshed.FullName = "Augusta Ada King"
	require.NoError(t, s.Dispatch(ctx, store.UpdateUser{User: refreshed}))
	assert.Equal(t, "tok1", s.State().Token)
	assert.Equal(t, "Augusta Ada King", s.State().User.FullName)
	assert.Equal(t, "c2", s.State().SelectedCompany.ID)

	refreshed.Companies = refreshed.Companies[:1]
	require.NoError(t, s.Dispatch(ctx, store.UpdateUser{User: refreshed}))
	assert.Nil(t, s.State().SelectedCompany)
}

func TestStore_Hooks(t *testing.T) {
	ctx := context.Background()

	var changes []store.Change
	s := newStore(t, store.WithHook(func(_ context.Context, c store.Change) {
		changes = append(changes, c)
	}))

	require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: testUser(), Token: "tok1"}))
	require.NoError(t, s.Dispatch(ctx, store.SelectCompany{CompanyID: "c1"}))
	require.NoError(t, s.Dispatch(ctx, store.DeselectCompany{}))
	require.NoError(t, s.Dispatch(ctx, store.DeselectCompany{})) // no-op
	require.Error(t, s.Dispatch(ctx, store.SelectCompany{CompanyID: "nope"}))

	require.Len(t, changes, 3)
	assert.True(t, changes[0].TokenChanged())
	assert.False(t, changes[0].CompanyChanged())
	assert.True(t, changes[1].CompanyChanged())
	assert.False(t, changes[1].TokenChanged())
	assert.Equal(t, "deselect_company", changes[2].Action.ActionName())
	assert.Same(t, changes[1].Next, changes[2].Prev)
}

func TestStore_HookSeesCommittedState(t *testing.T) {
	ctx := context.Background()
	var s *store.Store
	var seen *store.State
	s = newStore(t, store.WithHook(func(_ context.Context, c store.Change) {
		seen = s.State()
	}))

	require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: testUser(), Token: "tok1"}))
	assert.Same(t, s.State(), seen)
}

func TestStore_Subscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newStore(t)
	sub := s.Subscribe(ctx)

	require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: testUser(), Token: "tok1"}))
	require.NoError(t, s.Dispatch(ctx, store.SelectCompany{CompanyID: "c1"}))

	select {
	case change := <-sub.Receive():
		assert.Equal(t, s.State(), change.Next)
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}
}

func TestStore_InitialState(t *testing.T) {
	user := testUser()

	t.Run("seed is normalized", func(t *testing.T) {
		s := newStore(t, store.WithInitialState(&store.State{
			Token:           "tok1",
			User:            user,
			SelectedCompany: &store.Company{ID: "c2"},
			Version:         10,
		}))
		st := s.State()
		assert.Equal(t, "tok1", st.Token)
		assert.Same(t, &st.User.Companies[1], st.SelectedCompany)
		assert.Equal(t, uint64(10), st.Version)
	})

	t.Run("seed without token starts empty", func(t *testing.T) {
		s := newStore(t, store.WithInitialState(&store.State{User: user, SelectedCompany: &user.Companies[0]}))
		assert.Nil(t, s.State().User)
		assert.Nil(t, s.State().SelectedCompany)
	})

	t.Run("unknown seeded company is dropped", func(t *testing.T) {
		s := newStore(t, store.WithInitialState(&store.State{Token: "t", User: user, SelectedCompany: &store.Company{ID: "gone"}}))
		assert.Nil(t, s.State().SelectedCompany)
	})
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: testUser(), Token: "tok1"}))

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := "c1"
			if n%2 == 0 {
				id = "c2"
			}
			_ = s.Dispatch(ctx, store.SelectCompany{CompanyID: id})
			st := s.State()
			if st.SelectedCompany != nil {
				assert.NotNil(t, st.User.Company(st.SelectedCompany.ID))
			}
		}(i)
	}
	wg.Wait()
}

func TestStore_Closed(t *testing.T) {
	s := store.New(store.WithLogger(logger.Discard()))
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Dispatch(context.Background(), store.ClearUser{}), store.ErrClosed)
}

func TestUser_Helpers(t *testing.T) {
	u := testUser()
	assert.True(t, u.HasRole("accountant"))
	assert.False(t, u.HasRole("admin"))
	assert.True(t, u.HasPermission("reports.read"))
	assert.Nil(t, u.Company(""))

	var nilUser *store.User
	assert.Nil(t, nilUser.Company("c1"))
	assert.False(t, nilUser.HasRole("accountant"))
}
