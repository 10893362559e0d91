package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fitnessbooking/internal/database"
	"fitnessbooking/internal/domain"
	"fitnessbooking/internal/events"
	"fitnessbooking/internal/pkg/tz"
	"fitnessbooking/internal/repository"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishBookingCreated(ctx context.Context, ev events.BookingCreated) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type MockAdmissionStore struct {
	mock.Mock
}

func (m *MockAdmissionStore) Atomic(ctx context.Context, fn func(tx repository.AdmissionTx) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

type testEnv struct {
	svc       *Service
	classes   *repository.ClassRepository
	ledger    *repository.BookingRepository
	publisher *MockPublisher
}

func setupTestService(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:booking_test_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.ConnectQuiet(dsn)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	clock, err := tz.NewNormalizer("", nil)
	require.NoError(t, err)

	classes := repository.NewClassRepository(db)
	ledger := repository.NewBookingRepository(db)
	publisher := new(MockPublisher)
	publisher.On("PublishBookingCreated", mock.Anything, mock.Anything).Return(nil).Maybe()

	svc := NewService(repository.NewStore(db), ledger, classes, clock, publisher, nil)
	return &testEnv{svc: svc, classes: classes, ledger: ledger, publisher: publisher}
}

func (e *testEnv) createClass(t *testing.T, name string, slots int, start time.Time) *domain.FitnessClass {
	t.Helper()
	c := &domain.FitnessClass{
		Name:           name,
		Instructor:     "Priya Sharma",
		StartTime:      start,
		TotalSlots:     slots,
		RemainingSlots: slots,
	}
	require.NoError(t, e.classes.Create(context.Background(), c))
	return c
}

func (e *testEnv) remaining(t *testing.T, id string) int {
	t.Helper()
	c, err := e.classes.GetByID(context.Background(), id)
	require.NoError(t, err)
	return c.RemainingSlots
}

func bookReq(classID, email string) CreateBookingRequest {
	return CreateBookingRequest{ClassID: classID, UserEmail: email, UserName: "Test User"}
}

func TestService_YogaScenario(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	yoga := env.createClass(t, "Yoga", 1, time.Now().Add(24*time.Hour))

	b, err := env.svc.CreateBooking(ctx, bookReq(yoga.ID, "user1@x.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "Yoga", b.ClassName)
	assert.Equal(t, "user1@x.com", b.UserEmail)

	_, err = env.svc.CreateBooking(ctx, bookReq(yoga.ID, "user1@x.com"))
	assert.ErrorIs(t, err, ErrDuplicateBooking)

	_, err = env.svc.CreateBooking(ctx, bookReq(yoga.ID, "user2@x.com"))
	assert.ErrorIs(t, err, ErrNoCapacity)

	assert.Equal(t, 0, env.remaining(t, yoga.ID))
}

func TestService_EachBookingTakesOneSlot(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	c := env.createClass(t, "Spin", 3, time.Now().Add(time.Hour))

	for i := 1; i <= 3; i++ {
		_, err := env.svc.CreateBooking(ctx, bookReq(c.ID, fmt.Sprintf("rider%d@x.com", i)))
		require.NoError(t, err)
		assert.Equal(t, 3-i, env.remaining(t, c.ID))
	}

	_, err := env.svc.CreateBooking(ctx, bookReq(c.ID, "late@x.com"))
	assert.ErrorIs(t, err, ErrNoCapacity)
	assert.Equal(t, 0, env.remaining(t, c.ID))

	cnt, err := env.ledger.CountForClass(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cnt)
}

func TestService_ConcurrentDistinctUsers(t *testing.T) {
	env := setupTestService(t)
	const slots = 5
	c := env.createClass(t, "HIIT", slots, time.Now().Add(time.Hour))

	var wg sync.WaitGroup
	results := make(chan error, 2*slots)
	for i := 0; i < 2*slots; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.svc.CreateBooking(context.Background(), bookReq(c.ID, fmt.Sprintf("user%d@x.com", i)))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var ok, full int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrNoCapacity):
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, slots, ok)
	assert.Equal(t, slots, full)
	assert.Equal(t, 0, env.remaining(t, c.ID))

	cnt, err := env.ledger.CountForClass(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(slots), cnt)
}

func TestService_ConcurrentSameUser(t *testing.T) {
	env := setupTestService(t)
	c := env.createClass(t, "Pilates", 10, time.Now().Add(time.Hour))

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.CreateBooking(context.Background(), bookReq(c.ID, "same@x.com"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, dup int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateBooking):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 9, dup)
	assert.Equal(t, 9, env.remaining(t, c.ID))
}

func TestService_IndependentClasses(t *testing.T) {
	env := setupTestService(t)
	a := env.createClass(t, "A", 2, time.Now().Add(time.Hour))
	b := env.createClass(t, "B", 2, time.Now().Add(time.Hour))

	var wg sync.WaitGroup
	for _, id := range []string{a.ID, a.ID, b.ID, b.ID} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := env.svc.CreateBooking(context.Background(), bookReq(id, uuid.NewString()+"@x.com"))
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 0, env.remaining(t, a.ID))
	assert.Equal(t, 0, env.remaining(t, b.ID))
}

func TestService_Validation(t *testing.T) {
	env := setupTestService(t)
	c := env.createClass(t, "Yoga", 2, time.Now().Add(time.Hour))

	cases := []CreateBookingRequest{
		{ClassID: c.ID, UserEmail: "not-an-email", UserName: "A"},
		{ClassID: c.ID, UserEmail: "", UserName: "A"},
		{ClassID: c.ID, UserEmail: "a@x.com", UserName: ""},
		{ClassID: c.ID, UserEmail: "a@x.com", UserName: "<b></b>"},
		{ClassID: "", UserEmail: "a@x.com", UserName: "A"},
	}
	for _, req := range cases {
		_, err := env.svc.CreateBooking(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation, "request %+v", req)
	}
	assert.Equal(t, 2, env.remaining(t, c.ID))
}

func TestService_UnknownClass(t *testing.T) {
	env := setupTestService(t)

	_, err := env.svc.CreateBooking(context.Background(), bookReq(uuid.NewString(), "a@x.com"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ClassAlreadyStarted(t *testing.T) {
	env := setupTestService(t)
	c := env.createClass(t, "Yesterday", 5, time.Now().Add(-24*time.Hour))

	_, err := env.svc.CreateBooking(context.Background(), bookReq(c.ID, "a@x.com"))
	assert.ErrorIs(t, err, ErrClassStarted)
	assert.Equal(t, 5, env.remaining(t, c.ID))
}

func TestService_EmailIsCaseInsensitive(t *testing.T) {
	env := setupTestService(t)
	c := env.createClass(t, "Yoga", 5, time.Now().Add(time.Hour))

	_, err := env.svc.CreateBooking(context.Background(), bookReq(c.ID, "User1@X.com"))
	require.NoError(t, err)

	_, err = env.svc.CreateBooking(context.Background(), bookReq(c.ID, " user1@x.COM "))
	assert.ErrorIs(t, err, ErrDuplicateBooking)
}

func TestService_ListUserBookings(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	yoga := env.createClass(t, "Yoga", 5, time.Now().Add(24*time.Hour))
	spin := env.createClass(t, "Spin", 5, time.Now().Add(48*time.Hour))

	first, err := env.svc.CreateBooking(ctx, bookReq(yoga.ID, "user1@x.com"))
	require.NoError(t, err)

	list, err := env.svc.ListUserBookings(ctx, "user1@x.com")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, yoga.ID, list[0].ClassID)
	assert.Equal(t, "Yoga", list[0].ClassName)
	assert.True(t, yoga.StartTime.Equal(list[0].ClassStartTime))

	time.Sleep(2 * time.Millisecond)
	second, err := env.svc.CreateBooking(ctx, bookReq(spin.ID, "user1@x.com"))
	require.NoError(t, err)
	_, err = env.svc.CreateBooking(ctx, bookReq(spin.ID, "user2@x.com"))
	require.NoError(t, err)

	list, err = env.svc.ListUserBookings(ctx, "USER1@x.com")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	none, err := env.svc.ListUserBookings(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)

	_, err = env.svc.ListUserBookings(ctx, "broken")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_PublishesEvent(t *testing.T) {
	env := setupTestService(t)
	c := env.createClass(t, "Yoga", 3, time.Now().Add(time.Hour))

	publisher := new(MockPublisher)
	publisher.On("PublishBookingCreated", mock.Anything, mock.MatchedBy(func(ev events.BookingCreated) bool {
		return ev.ClassID == c.ID && ev.RemainingSlots == 2 && ev.TotalSlots == 3 &&
			ev.UserEmail == "a@x.com" && ev.Type == events.TypeBookingCreated
	})).Return(errors.New("broker unavailable")).Once()
	env.svc.events = publisher

	b, err := env.svc.CreateBooking(context.Background(), bookReq(c.ID, "a@x.com"))
	require.NoError(t, err, "event delivery failures must not fail the booking")
	assert.NotEmpty(t, b.ID)
	publisher.AssertExpectations(t)
}

func TestService_NoEventOnRejection(t *testing.T) {
	env := setupTestService(t)
	c := env.createClass(t, "Yoga", 1, time.Now().Add(time.Hour))

	publisher := new(MockPublisher)
	publisher.On("PublishBookingCreated", mock.Anything, mock.Anything).Return(nil).Once()
	env.svc.events = publisher

	_, err := env.svc.CreateBooking(context.Background(), bookReq(c.ID, "a@x.com"))
	require.NoError(t, err)
	_, err = env.svc.CreateBooking(context.Background(), bookReq(c.ID, "b@x.com"))
	require.ErrorIs(t, err, ErrNoCapacity)

	publisher.AssertNumberOfCalls(t, "PublishBookingCreated", 1)
}

func TestService_StoreErrorPropagates(t *testing.T) {
	store := new(MockAdmissionStore)
	boom := errors.New("connection reset")
	store.On("Atomic", mock.Anything, mock.Anything).Return(boom)

	clock, err := tz.NewNormalizer("", nil)
	require.NoError(t, err)
	svc := NewService(store, nil, nil, clock, nil, nil)

	_, err = svc.CreateBooking(context.Background(), bookReq("class-1", "a@x.com"))
	assert.ErrorIs(t, err, boom)
	store.AssertExpectations(t)
}

func TestService_ContextCancelledWhileWaiting(t *testing.T) {
	env := setupTestService(t)
	c := env.createClass(t, "Yoga", 5, time.Now().Add(time.Hour))

	unlock, err := env.svc.locks.Lock(context.Background(), c.ID)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = env.svc.CreateBooking(ctx, bookReq(c.ID, "a@x.com"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 5, env.remaining(t, c.ID))
}

// slowFirstPublisher stalls the event that still reports a free seat and
// records the order in which remaining counts are published.
type slowFirstPublisher struct {
	mu    sync.Mutex
	order []int
	delay time.Duration
}

func (p *slowFirstPublisher) PublishBookingCreated(_ context.Context, ev events.BookingCreated) error {
	if ev.RemainingSlots > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order = append(p.order, ev.RemainingSlots)
	return nil
}

func TestService_EventsFollowAdmissionOrder(t *testing.T) {
	env := setupTestService(t)
	c := env.createClass(t, "Yoga", 2, time.Now().Add(time.Hour))

	publisher := &slowFirstPublisher{delay: 100 * time.Millisecond}
	env.svc.events = publisher

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.svc.CreateBooking(context.Background(), bookReq(c.ID, fmt.Sprintf("user%d@x.com", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	assert.Equal(t, []int{1, 0}, publisher.order)
	assert.Equal(t, 0, env.remaining(t, c.ID))
}
