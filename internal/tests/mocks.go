package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/fleet"
	internalRedis "github.com/Omar1Ach/EcoRide-Backend-sub001/internal/redis"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RESERVATION REPOSITORY
// ──────────────────────────────────────────────

// MockReservationRepository is an in-memory ReservationRepository that
// enforces the same exclusivity rules as the Postgres implementation.
type MockReservationRepository struct {
	mu           sync.Mutex
	reservations map[string]*domain.Reservation

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	GetError          error
	UpdateStatusError error
}

// NewMockReservationRepository creates a new mock reservation repository.
func NewMockReservationRepository() *MockReservationRepository {
	return &MockReservationRepository{
		reservations: make(map[string]*domain.Reservation),
	}
}

// AddReservation seeds a reservation.
func (m *MockReservationRepository) AddReservation(res *domain.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[res.ID] = res
}

func (m *MockReservationRepository) CreateActive(ctx context.Context, res *domain.Reservation, now time.Time) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.reservations {
		if existing.Status != domain.ReservationStatusActive {
			continue
		}
		if !existing.ExpiresAt.After(now) {
			existing.Status = domain.ReservationStatusExpired
			continue
		}
		if existing.UserID == res.UserID {
			return repository.ErrUserHasActiveReservation
		}
		if existing.VehicleID == res.VehicleID {
			return repository.ErrVehicleReserved
		}
	}

	stored := *res
	m.reservations[res.ID] = &stored
	return nil
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *res
	return &copy, nil
}

func (m *MockReservationRepository) GetActiveByUserID(ctx context.Context, userID string, now time.Time) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, res := range m.reservations {
		if res.UserID == userID && res.Status == domain.ReservationStatusActive && res.ExpiresAt.After(now) {
			copy := *res
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockReservationRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Reservation
	for _, res := range m.reservations {
		if res.UserID == userID {
			copy := *res
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ReservationStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.reservations[id]
	if !ok {
		return repository.ErrNotFound
	}
	if res.Status != from {
		return repository.ErrReservationNotActive
	}
	res.Status = to
	return nil
}

func (m *MockReservationRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, res := range m.reservations {
		if res.Status == domain.ReservationStatusActive && !res.ExpiresAt.After(now) {
			res.Status = domain.ReservationStatusExpired
			count++
		}
	}
	return count, nil
}

// GetReservation returns the stored reservation for assertions.
func (m *MockReservationRepository) GetReservation(id string) *domain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reservations[id]
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is an in-memory TripRepository. It shares the
// reservation repository so conversion can flip the reservation atomically
// the way the Postgres implementation does.
type MockTripRepository struct {
	mu       sync.Mutex
	trips    map[string]*domain.Trip
	receipts map[string]*domain.Receipt

	Reservations *MockReservationRepository

	// Counters for verification
	ConvertCallCount  int32
	CompleteCallCount int32
	GetByIDCallCount  int32

	// Error injection
	ConvertError  error
	CompleteError error
	RatingError   error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository(reservations *MockReservationRepository) *MockTripRepository {
	return &MockTripRepository{
		trips:        make(map[string]*domain.Trip),
		receipts:     make(map[string]*domain.Receipt),
		Reservations: reservations,
	}
}

// AddTrip seeds a trip.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) ConvertReservation(ctx context.Context, reservationID string, now time.Time, trip *domain.Trip) error {
	atomic.AddInt32(&m.ConvertCallCount, 1)
	if m.ConvertError != nil {
		return m.ConvertError
	}

	m.Reservations.mu.Lock()
	res, ok := m.Reservations.reservations[reservationID]
	if !ok {
		m.Reservations.mu.Unlock()
		return repository.ErrNotFound
	}
	if res.Status != domain.ReservationStatusActive {
		m.Reservations.mu.Unlock()
		return repository.ErrReservationNotActive
	}
	if !res.ExpiresAt.After(now) {
		res.Status = domain.ReservationStatusExpired
		m.Reservations.mu.Unlock()
		return repository.ErrReservationExpired
	}

	m.mu.Lock()
	for _, existing := range m.trips {
		if existing.Status != domain.TripStatusActive {
			continue
		}
		if existing.UserID == trip.UserID {
			m.mu.Unlock()
			m.Reservations.mu.Unlock()
			return repository.ErrUserHasActiveTrip
		}
		if existing.VehicleID == trip.VehicleID {
			m.mu.Unlock()
			m.Reservations.mu.Unlock()
			return repository.ErrVehicleInUse
		}
	}

	res.Status = domain.ReservationStatusConverted
	stored := *trip
	m.trips[trip.ID] = &stored
	m.mu.Unlock()
	m.Reservations.mu.Unlock()
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetActiveByUserID(ctx context.Context, userID string) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, trip := range m.trips {
		if trip.UserID == userID && trip.Status == domain.TripStatusActive {
			copy := *trip
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockTripRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Trip
	for _, trip := range m.trips {
		if trip.UserID == userID {
			copy := *trip
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartedAt.After(result[j].StartedAt) })
	return result, nil
}

func (m *MockTripRepository) Complete(ctx context.Context, trip *domain.Trip, receipt *domain.Receipt) error {
	atomic.AddInt32(&m.CompleteCallCount, 1)
	if m.CompleteError != nil {
		return m.CompleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.trips[trip.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != domain.TripStatusActive {
		return repository.ErrTripNotActive
	}
	*stored = *trip
	stored.Status = domain.TripStatusCompleted
	receiptCopy := *receipt
	m.receipts[receipt.TripID] = &receiptCopy
	return nil
}

func (m *MockTripRepository) SetRating(ctx context.Context, tripID string, stars int, comment string) error {
	if m.RatingError != nil {
		return m.RatingError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return repository.ErrNotFound
	}
	if trip.Status != domain.TripStatusCompleted {
		return repository.ErrTripNotActive
	}
	if trip.RatingStars != 0 {
		return repository.ErrAlreadyRated
	}
	trip.RatingStars = stars
	trip.RatingComment = comment
	return nil
}

// GetTrip returns the stored trip for assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trips[id]
}

// GetReceiptForTrip returns the receipt stored at completion.
func (m *MockTripRepository) GetReceiptForTrip(tripID string) *domain.Receipt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.receipts[tripID]
}

// ──────────────────────────────────────────────
// MOCK WALLET REPOSITORY
// ──────────────────────────────────────────────

// MockWalletRepository is an in-memory WalletRepository with the same
// atomic debit/credit semantics as the Postgres implementation.
type MockWalletRepository struct {
	mu       sync.Mutex
	balances map[string]float64
	entries  []*domain.WalletTransaction

	// Counters for verification
	ApplyTripChargeCallCount int32
	ApplyTopUpCallCount      int32

	// Error injection
	ApplyTripChargeError error
	BalanceError         error
}

// NewMockWalletRepository creates a new mock wallet repository.
func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{balances: make(map[string]float64)}
}

// SetBalance seeds a wallet balance.
func (m *MockWalletRepository) SetBalance(userID string, balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = balance
}

func (m *MockWalletRepository) GetBalance(ctx context.Context, userID string) (float64, error) {
	if m.BalanceError != nil {
		return 0, m.BalanceError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.balances[userID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return balance, nil
}

func (m *MockWalletRepository) ApplyTripCharge(ctx context.Context, entry *domain.WalletTransaction) error {
	atomic.AddInt32(&m.ApplyTripChargeCallCount, 1)
	if m.ApplyTripChargeError != nil {
		return m.ApplyTripChargeError
	}
	return m.apply(entry)
}

func (m *MockWalletRepository) ApplyTopUp(ctx context.Context, entry *domain.WalletTransaction) error {
	atomic.AddInt32(&m.ApplyTopUpCallCount, 1)
	return m.apply(entry)
}

func (m *MockWalletRepository) apply(entry *domain.WalletTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before, ok := m.balances[entry.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	after := before + entry.Amount
	if after < 0 {
		return repository.ErrInsufficientBalance
	}
	m.balances[entry.UserID] = after
	entry.BalanceBefore = before
	entry.BalanceAfter = after
	copy := *entry
	m.entries = append(m.entries, &copy)
	return nil
}

func (m *MockWalletRepository) GetTripCharge(ctx context.Context, tripID string) (*domain.WalletTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.entries {
		if entry.Type == domain.TransactionTypeTripCharge && entry.TripID == tripID {
			copy := *entry
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.WalletTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.WalletTransaction
	for _, entry := range m.entries {
		if entry.UserID == userID {
			copy := *entry
			result = append(result, &copy)
		}
	}
	return result, nil
}

// Entries returns all recorded ledger entries for assertions.
func (m *MockWalletRepository) Entries() []*domain.WalletTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.WalletTransaction, len(m.entries))
	copy(result, m.entries)
	return result
}

// ──────────────────────────────────────────────
// MOCK RECEIPT REPOSITORY
// ──────────────────────────────────────────────

// MockReceiptRepository is an in-memory ReceiptRepository.
type MockReceiptRepository struct {
	mu       sync.Mutex
	receipts map[string]*domain.Receipt
}

// NewMockReceiptRepository creates a new mock receipt repository.
func NewMockReceiptRepository() *MockReceiptRepository {
	return &MockReceiptRepository{receipts: make(map[string]*domain.Receipt)}
}

// AddReceipt seeds a receipt.
func (m *MockReceiptRepository) AddReceipt(r *domain.Receipt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts[r.ID] = r
}

func (m *MockReceiptRepository) GetByID(ctx context.Context, id string) (*domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.receipts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *r
	return &copy, nil
}

func (m *MockReceiptRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.receipts {
		if r.TripID == tripID {
			copy := *r
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockReceiptRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Receipt
	for _, r := range m.receipts {
		if r.UserID == userID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is an in-memory UserRepository.
type MockUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// AddUser seeds a user.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Phone == phone {
			copy := *user
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		copy := *user
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK FLEET
// ──────────────────────────────────────────────

// MockFleet serves scripted vehicle snapshots.
type MockFleet struct {
	mu       sync.Mutex
	vehicles map[string]*domain.Vehicle

	GetError error
}

// NewMockFleet creates a new mock fleet.
func NewMockFleet() *MockFleet {
	return &MockFleet{vehicles: make(map[string]*domain.Vehicle)}
}

// AddVehicle seeds a vehicle snapshot.
func (m *MockFleet) AddVehicle(v *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.ID] = v
}

func (m *MockFleet) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[vehicleID]
	if !ok {
		return nil, fleet.ErrVehicleNotFound
	}
	copy := *v
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockHoldStore is an in-memory vehicle hold store.
type MockHoldStore struct {
	mu    sync.Mutex
	holds map[string]bool

	AcquireError error
}

// NewMockHoldStore creates a new mock hold store.
func NewMockHoldStore() *MockHoldStore {
	return &MockHoldStore{holds: make(map[string]bool)}
}

func (m *MockHoldStore) AcquireVehicleHold(ctx context.Context, vehicleID string, ttl time.Duration) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.holds[vehicleID] {
		return false, nil
	}
	m.holds[vehicleID] = true
	return true, nil
}

func (m *MockHoldStore) ReleaseVehicleHold(ctx context.Context, vehicleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holds, vehicleID)
	return nil
}

// MockCacheStore is an in-memory cache that stores snapshots and records
// invalidations.
type MockCacheStore struct {
	mu                      sync.Mutex
	reservations            map[string]*internalRedis.CachedReservation
	trips                   map[string]*internalRedis.CachedTrip
	InvalidatedReservations []string
	InvalidatedTrips        []string
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		reservations: make(map[string]*internalRedis.CachedReservation),
		trips:        make(map[string]*internalRedis.CachedTrip),
	}
}

func (m *MockCacheStore) GetReservation(ctx context.Context, id string) (*internalRedis.CachedReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reservations[id], nil
}

func (m *MockCacheStore) SetReservation(ctx context.Context, res *internalRedis.CachedReservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *res
	m.reservations[res.ID] = &copy
	return nil
}

func (m *MockCacheStore) InvalidateReservation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reservations, id)
	m.InvalidatedReservations = append(m.InvalidatedReservations, id)
	return nil
}

func (m *MockCacheStore) GetTrip(ctx context.Context, id string) (*internalRedis.CachedTrip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trips[id], nil
}

func (m *MockCacheStore) SetTrip(ctx context.Context, trip *internalRedis.CachedTrip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockCacheStore) InvalidateTrip(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trips, id)
	m.InvalidatedTrips = append(m.InvalidatedTrips, id)
	return nil
}

// TripSnapshot returns the cached trip snapshot for assertions.
func (m *MockCacheStore) TripSnapshot(id string) *internalRedis.CachedTrip {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trips[id]
}

// FixedDistance is a DistanceSource returning a constant.
type FixedDistance struct {
	Km float64
}

func (d FixedDistance) TripDistanceKm(vehicleID string, start, end time.Time) float64 {
	return d.Km
}
