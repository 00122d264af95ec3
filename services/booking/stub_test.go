package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingRepo "consultly/database/repository/booking"
	waitlistRepo "consultly/database/repository/waitlist"
	"consultly/models"

	"github.com/google/uuid"
)

// In-memory repository doubles. They mirror the Mongo repositories'
// contracts, sentinel for sentinel, and take a single lock per call so
// the concurrency tests exercise real interleavings.

type stubBookingRepo struct {
	mu           sync.Mutex
	bookings     map[string]*models.Booking
	participants map[string]map[string]models.GroupSessionParticipant
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{
		bookings:     make(map[string]*models.Booking),
		participants: make(map[string]map[string]models.GroupSessionParticipant),
	}
}

func (r *stubBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *stubBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *stubBookingRepo) TransitionStatus(ctx context.Context, id string, from []string, to string, set map[string]interface{}, releaseParticipants bool) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	allowed := false
	for _, f := range from {
		if b.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, nil
	}
	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	for k, v := range set {
		switch k {
		case "refund_requested":
			b.RefundRequested = v.(bool)
		case "refund_status":
			b.RefundStatus = v.(string)
		case "refund_amount":
			b.RefundAmount = v.(float64)
		case "refunded_at":
			t := v.(time.Time)
			b.RefundedAt = &t
		}
	}
	if releaseParticipants {
		delete(r.participants, id)
		b.CurrentParticipants = 0
	}
	cp := *b
	return &cp, nil
}

func (r *stubBookingRepo) JoinGroup(ctx context.Context, bookingID, studentID string, joinedAt time.Time) (*models.GroupSessionParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rows, ok := r.participants[bookingID]; ok {
		if _, dup := rows[studentID]; dup {
			return nil, bookingRepo.ErrAlreadyEnrolled
		}
	}
	b, ok := r.bookings[bookingID]
	if !ok || !b.IsGroupSession || b.Status != models.StatusConfirmed {
		return nil, bookingRepo.ErrNotJoinable
	}
	if b.CurrentParticipants >= b.MaxParticipants {
		return nil, bookingRepo.ErrCapacityFull
	}
	row := models.GroupSessionParticipant{
		ID:        uuid.New().String(),
		BookingID: bookingID,
		StudentID: studentID,
		JoinedAt:  joinedAt,
	}
	if r.participants[bookingID] == nil {
		r.participants[bookingID] = make(map[string]models.GroupSessionParticipant)
	}
	r.participants[bookingID][studentID] = row
	b.CurrentParticipants++
	return &row, nil
}

func (r *stubBookingRepo) LeaveGroup(ctx context.Context, bookingID, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows, ok := r.participants[bookingID]
	if !ok {
		return bookingRepo.ErrNotEnrolled
	}
	if _, enrolled := rows[studentID]; !enrolled {
		return bookingRepo.ErrNotEnrolled
	}
	delete(rows, studentID)
	if b, ok := r.bookings[bookingID]; ok && b.CurrentParticipants > 0 {
		b.CurrentParticipants--
	}
	return nil
}

func (r *stubBookingRepo) RecordRating(ctx context.Context, bookingID string, rating int, reviewText string, reviewedAt time.Time, creditBonus int) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.Status != models.StatusCompleted || b.ReviewedAt != nil {
		return nil, nil
	}
	b.Rating = rating
	b.ReviewText = reviewText
	at := reviewedAt
	b.ReviewedAt = &at
	b.CreditsEarned += creditBonus
	cp := *b
	return &cp, nil
}

func (r *stubBookingRepo) ListByStudent(ctx context.Context, studentID string, filters models.BookingFilters) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.StudentID != studentID {
			continue
		}
		if len(filters.Statuses) > 0 {
			match := false
			for _, st := range filters.Statuses {
				if b.Status == st {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if filters.IsGroupSession != nil && b.IsGroupSession != *filters.IsGroupSession {
			continue
		}
		if filters.MinPrice != nil && b.FinalPrice < *filters.MinPrice {
			continue
		}
		if filters.MaxPrice != nil && b.FinalPrice > *filters.MaxPrice {
			continue
		}
		if filters.HasRating != nil && (b.Rating > 0) != *filters.HasRating {
			continue
		}
		if filters.From != nil && b.ScheduledAt.Before(*filters.From) {
			continue
		}
		if filters.To != nil && b.ScheduledAt.After(*filters.To) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *stubBookingRepo) ListAvailableGroupSessions(ctx context.Context, now time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.IsGroupSession && b.Status == models.StatusConfirmed &&
			b.ScheduledAt.After(now) && b.CurrentParticipants < b.MaxParticipants {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *stubBookingRepo) ListEnrolledGroupSessions(ctx context.Context, studentID string, now time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for id, rows := range r.participants {
		if _, ok := rows[studentID]; !ok {
			continue
		}
		if b, ok := r.bookings[id]; ok && b.ScheduledAt.After(now) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *stubBookingRepo) Participants(ctx context.Context, bookingID string) ([]models.GroupSessionParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.GroupSessionParticipant
	for _, row := range r.participants[bookingID] {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *stubBookingRepo) participantCount(bookingID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants[bookingID])
}

type stubWaitlistRepo struct {
	mu      sync.Mutex
	entries []*models.ConsultantWaitlistEntry
}

func newStubWaitlistRepo() *stubWaitlistRepo {
	return &stubWaitlistRepo{}
}

func (r *stubWaitlistRepo) Append(ctx context.Context, entry *models.ConsultantWaitlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tail := 0
	for _, e := range r.entries {
		if e.ConsultantID == entry.ConsultantID {
			if e.StudentID == entry.StudentID && e.ServiceID == entry.ServiceID {
				return waitlistRepo.ErrDuplicateEntry
			}
			if e.Position > tail {
				tail = e.Position
			}
		}
	}
	entry.Position = tail + 1
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *stubWaitlistRepo) Remove(ctx context.Context, entryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(entryID)
}

func (r *stubWaitlistRepo) removeLocked(entryID string) error {
	for i, e := range r.entries {
		if e.ID == entryID {
			removed := *e
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			for _, rest := range r.entries {
				if rest.ConsultantID == removed.ConsultantID && rest.Position > removed.Position {
					rest.Position--
				}
			}
			return nil
		}
	}
	return waitlistRepo.ErrNotFound
}

func (r *stubWaitlistRepo) GetByID(ctx context.Context, entryID string) (*models.ConsultantWaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == entryID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, waitlistRepo.ErrNotFound
}

func (r *stubWaitlistRepo) ListByConsultant(ctx context.Context, consultantID string) ([]models.ConsultantWaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ConsultantWaitlistEntry
	for _, e := range r.entries {
		if e.ConsultantID == consultantID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *stubWaitlistRepo) ListByStudent(ctx context.Context, studentID string) ([]models.ConsultantWaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ConsultantWaitlistEntry
	for _, e := range r.entries {
		if e.StudentID == studentID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *stubWaitlistRepo) MarkNotified(ctx context.Context, entryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == entryID {
			e.Notified = true
			return nil
		}
	}
	return waitlistRepo.ErrNotFound
}

func (r *stubWaitlistRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for {
		found := ""
		for _, e := range r.entries {
			if e.Expired(now) {
				found = e.ID
				break
			}
		}
		if found == "" {
			return purged, nil
		}
		if err := r.removeLocked(found); err != nil {
			return purged, err
		}
		purged++
	}
}

type stubSavedRepo struct {
	mu    sync.Mutex
	saved map[string]models.SavedConsultant // student_id|consultant_id
}

func newStubSavedRepo() *stubSavedRepo {
	return &stubSavedRepo{saved: make(map[string]models.SavedConsultant)}
}

func (r *stubSavedRepo) Toggle(ctx context.Context, studentID, consultantID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := studentID + "|" + consultantID
	if _, ok := r.saved[key]; ok {
		delete(r.saved, key)
		return false, nil
	}
	r.saved[key] = models.SavedConsultant{
		ID:           uuid.New().String(),
		StudentID:    studentID,
		ConsultantID: consultantID,
		SavedAt:      time.Now().UTC(),
	}
	return true, nil
}

func (r *stubSavedRepo) ListByStudent(ctx context.Context, studentID string) ([]models.SavedConsultant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SavedConsultant
	for _, sc := range r.saved {
		if sc.StudentID == studentID {
			out = append(out, sc)
		}
	}
	return out, nil
}

// stubFeed records published events for assertion.
type stubFeed struct {
	mu     sync.Mutex
	events []models.BookingEvent
}

func (f *stubFeed) Publish(event models.BookingEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *stubFeed) Subscribe(buffer int) (<-chan models.BookingEvent, func()) {
	ch := make(chan models.BookingEvent)
	return ch, func() {}
}

func (f *stubFeed) eventsOfType(eventType string) []models.BookingEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BookingEvent
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	svc      *DefaultBookingService
	repo     *stubBookingRepo
	waitlist *stubWaitlistRepo
	saved    *stubSavedRepo
	feed     *stubFeed
	now      time.Time
}

func newTestEnv() *testEnv {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	env := &testEnv{
		repo:     newStubBookingRepo(),
		waitlist: newStubWaitlistRepo(),
		saved:    newStubSavedRepo(),
		feed:     &stubFeed{},
		now:      now,
	}
	env.svc = &DefaultBookingService{
		Repo:              env.repo,
		Waitlist:          env.waitlist,
		Saved:             env.saved,
		Feed:              env.feed,
		Now:               func() time.Time { return env.now },
		ReviewCreditBonus: 5,
	}
	return env
}

// seedGroupSession inserts a confirmed upcoming group session directly.
func (env *testEnv) seedGroupSession(id string, maxParticipants int) *models.Booking {
	b := &models.Booking{
		ID:              id,
		StudentID:       "host-student",
		ConsultantID:    "consultant-1",
		ServiceID:       "service-1",
		ScheduledAt:     env.now.Add(48 * time.Hour),
		DurationMinutes: 60,
		Status:          models.StatusConfirmed,
		BasePrice:       40,
		FinalPrice:      40,
		IsGroupSession:  true,
		MaxParticipants: maxParticipants,
		CreatedAt:       env.now,
		UpdatedAt:       env.now,
	}
	_ = env.repo.Create(context.Background(), b)
	return b
}
