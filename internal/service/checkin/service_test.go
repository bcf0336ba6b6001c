package checkin

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/slimcircle/slimcircle/internal/models"
	"github.com/slimcircle/slimcircle/internal/week"
	"github.com/slimcircle/slimcircle/pkg/logger"
)

type mockStore struct {
	checkIns map[string]*models.CheckIn
	failWith error
}

func newMockStore() *mockStore {
	return &mockStore{checkIns: make(map[string]*models.CheckIn)}
}

func storeKey(userID uint, weekNumber int) string {
	return fmt.Sprintf("%d:%d", userID, weekNumber)
}

func (m *mockStore) GetByUserAndWeek(userID uint, weekNumber int) (*models.CheckIn, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.checkIns[storeKey(userID, weekNumber)], nil
}

func (m *mockStore) Upsert(checkIn *models.CheckIn) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.checkIns[storeKey(checkIn.UserID, checkIn.WeekNumber)] = checkIn
	return nil
}

func (m *mockStore) ListByUser(userID uint) ([]models.CheckIn, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.CheckIn
	for _, c := range m.checkIns {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

// Monday of week 202602 in the test calendar (UTC)
var monday202602 = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

func setupTestService(now time.Time) (*Service, *mockStore) {
	store := newMockStore()
	cal := week.NewCalendar(time.UTC, week.DefaultCloseHour)
	log := logger.New("debug", "text", "stdout")
	svc := NewServiceWithInterfaces(cal, week.FixedClock{T: now}, store, 30, 200, log)
	return svc, store
}

func TestSubmitInsideWindow(t *testing.T) {
	svc, store := setupTestService(monday202602.Add(9 * time.Hour))

	got, err := svc.Submit(context.Background(), 1, 72.5, "https://img.example.com/1.jpg")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.WeekNumber != 202602 {
		t.Errorf("WeekNumber = %d, want 202602", got.WeekNumber)
	}
	if got.Weight != 72.5 {
		t.Errorf("Weight = %v, want 72.5", got.Weight)
	}

	saved, _ := store.GetByUserAndWeek(1, 202602)
	if saved == nil {
		t.Fatal("check-in was not persisted")
	}
}

func TestSubmitOutsideWindow(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
	}{
		{"monday at close", monday202602.Add(20 * time.Hour)},
		{"midweek", monday202602.Add(72 * time.Hour)},
		{"sunday night", monday202602.Add(7*24*time.Hour - time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := setupTestService(tt.now)

			_, err := svc.Submit(context.Background(), 1, 72.5, "")
			if !errors.Is(err, ErrWindowClosed) {
				t.Errorf("Submit() error = %v, want ErrWindowClosed", err)
			}
			if len(store.checkIns) != 0 {
				t.Error("rejected submission must not be persisted")
			}
		})
	}
}

func TestSubmitWeightBounds(t *testing.T) {
	tests := []struct {
		name    string
		weight  float64
		wantErr bool
	}{
		{"below minimum", 29.9, true},
		{"at minimum", 30, false},
		{"typical", 75, false},
		{"at maximum", 200, false},
		{"above maximum", 200.1, true},
		{"zero", 0, true},
		{"negative", -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupTestService(monday202602.Add(9 * time.Hour))

			_, err := svc.Submit(context.Background(), 1, tt.weight, "")
			if tt.wantErr && !errors.Is(err, ErrWeightOutOfRange) {
				t.Errorf("Submit(%v) error = %v, want ErrWeightOutOfRange", tt.weight, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Submit(%v) error = %v", tt.weight, err)
			}
		})
	}
}

func TestSubmitResubmissionOverwrites(t *testing.T) {
	svc, store := setupTestService(monday202602.Add(9 * time.Hour))

	if _, err := svc.Submit(context.Background(), 1, 75, "https://img.example.com/a.jpg"); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if _, err := svc.Submit(context.Background(), 1, 74.2, "https://img.example.com/b.jpg"); err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}

	if len(store.checkIns) != 1 {
		t.Fatalf("got %d rows, want resubmission to overwrite in place", len(store.checkIns))
	}
	saved, _ := store.GetByUserAndWeek(1, 202602)
	if saved.Weight != 74.2 || saved.PhotoURL != "https://img.example.com/b.jpg" {
		t.Errorf("saved = %+v, want latest weight and photo", saved)
	}
}

func TestStatus(t *testing.T) {
	t.Run("unchecked while open", func(t *testing.T) {
		svc, _ := setupTestService(monday202602.Add(9 * time.Hour))

		got, err := svc.Status(context.Background(), 1)
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		if got.Status != StatusUnchecked {
			t.Errorf("Status = %q, want %q", got.Status, StatusUnchecked)
		}
		if got.WeekNumber != 202602 {
			t.Errorf("WeekNumber = %d, want 202602", got.WeekNumber)
		}
		if !got.WindowOpen.Equal(monday202602) {
			t.Errorf("WindowOpen = %v, want %v", got.WindowOpen, monday202602)
		}
		if !got.WindowEnd.Equal(monday202602.Add(20 * time.Hour)) {
			t.Errorf("WindowEnd = %v, want Monday 20:00", got.WindowEnd)
		}
	})

	t.Run("checked after submission", func(t *testing.T) {
		svc, _ := setupTestService(monday202602.Add(9 * time.Hour))

		if _, err := svc.Submit(context.Background(), 1, 75, ""); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		got, err := svc.Status(context.Background(), 1)
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		if got.Status != StatusChecked {
			t.Errorf("Status = %q, want %q", got.Status, StatusChecked)
		}
		if got.CheckIn == nil || got.CheckIn.Weight != 75 {
			t.Errorf("CheckIn = %+v, want attached submission", got.CheckIn)
		}
	})

	t.Run("closed midweek", func(t *testing.T) {
		svc, _ := setupTestService(monday202602.Add(48 * time.Hour))

		got, err := svc.Status(context.Background(), 1)
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		if got.Status != StatusClosed {
			t.Errorf("Status = %q, want %q", got.Status, StatusClosed)
		}
	})
}

func TestSubmitStoreFailure(t *testing.T) {
	svc, store := setupTestService(monday202602.Add(9 * time.Hour))
	store.failWith = errors.New("connection reset")

	_, err := svc.Submit(context.Background(), 1, 75, "")
	if err == nil {
		t.Fatal("Submit() expected error when store is down")
	}
}
