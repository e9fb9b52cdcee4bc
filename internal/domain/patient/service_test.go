package patient

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/medassist/internal/platform/db"
)

// mockRepo keeps patients in a map and mirrors the store's observable
// behavior: unique email, active-only reads, ordering by creation time.
type mockRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*Patient
	seq      int
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Email != nil {
		for _, other := range m.patients {
			if other.Email != nil && *other.Email == *p.Email {
				return fmt.Errorf("insert patient: %w", db.ErrConflict)
			}
		}
	}
	m.seq++
	p.ID = uuid.New()
	p.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, m.seq, time.UTC)
	p.UpdatedAt = p.CreatedAt
	p.Active = true
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok || !p.Active {
		return nil, db.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, id uuid.UUID, upd *Update) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if upd.FirstName != nil {
		p.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		p.LastName = *upd.LastName
	}
	if upd.Email != nil {
		p.Email = clearable(upd.Email)
	}
	if upd.Phone != nil {
		p.Phone = clearable(upd.Phone)
	}
	if upd.BirthDate != nil {
		p.BirthDate = upd.BirthDate
	}
	if upd.Age != nil {
		p.Age = upd.Age
	}
	if upd.Weight != nil {
		p.Weight = upd.Weight
	}
	if upd.Height != nil {
		p.Height = upd.Height
	}
	p.UpdatedAt = p.UpdatedAt.Add(time.Second)
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return db.ErrNotFound
	}
	p.Active = false
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := m.activeSorted()
	total := len(active)
	if offset >= len(active) {
		return nil, total, nil
	}
	active = active[offset:]
	if limit < len(active) {
		active = active[:limit]
	}
	return active, total, nil
}

func (m *mockRepo) Search(_ context.Context, query string) ([]*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var out []*Patient
	for _, p := range m.activeSorted() {
		if strings.Contains(strings.ToLower(p.FirstName), q) ||
			strings.Contains(strings.ToLower(p.LastName), q) ||
			(p.Email != nil && strings.Contains(strings.ToLower(*p.Email), q)) ||
			(p.Phone != nil && strings.Contains(strings.ToLower(*p.Phone), q)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepo) CountActive(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.activeSorted()), nil
}

func (m *mockRepo) Purge(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

// activeSorted returns copies of the active rows, newest first. Callers must
// hold the mutex.
func (m *mockRepo) activeSorted() []*Patient {
	var out []*Patient
	for _, p := range m.patients {
		if p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// clearable mirrors the store's empty-string-to-NULL rule for nullable text
// columns on update.
func clearable(s *string) *string {
	if s != nil && *s == "" {
		return nil
	}
	return s
}

type fixedCounter struct{ n int }

func (c fixedCounter) CountByPatient(context.Context, uuid.UUID) (int, error) {
	return c.n, nil
}

func newTestService(repo Repository) *Service {
	s := NewService(repo, nil)
	s.now = func() time.Time { return time.Date(2024, 8, 30, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestCreateRequiresNames(t *testing.T) {
	svc := newTestService(newMockRepo())

	_, err := svc.Create(context.Background(), CreateInput{FirstName: "  ", LastName: "Doe"})
	if !errors.Is(err, db.ErrInvalid) {
		t.Errorf("blank first name: err = %v, want ErrInvalid", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{FirstName: "Jane"})
	if !errors.Is(err, db.ErrInvalid) {
		t.Errorf("missing last name: err = %v, want ErrInvalid", err)
	}
}

func TestCreateRejectsMalformedBirthDate(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	for _, bad := range []string{"15/06/1990", "1990-13-40", "yesterday"} {
		_, err := svc.Create(context.Background(), CreateInput{FirstName: "Jane", LastName: "Doe", BirthDate: bad})
		if !errors.Is(err, db.ErrInvalid) {
			t.Errorf("birth date %q: err = %v, want ErrInvalid", bad, err)
		}
	}
	if len(repo.patients) != 0 {
		t.Errorf("stored %d patients, want 0 after rejected creates", len(repo.patients))
	}
}

func TestCreateRejectsOutOfRangeVitals(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	intp := func(v int) *int { return &v }
	floatp := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"age too high", CreateInput{FirstName: "Jane", LastName: "Doe", Age: intp(999)}},
		{"age negative", CreateInput{FirstName: "Jane", LastName: "Doe", Age: intp(-1)}},
		{"weight too high", CreateInput{FirstName: "Jane", LastName: "Doe", Weight: floatp(1000)}},
		{"height too high", CreateInput{FirstName: "Jane", LastName: "Doe", Height: floatp(900)}},
		{"height negative", CreateInput{FirstName: "Jane", LastName: "Doe", Height: floatp(-5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.in); !errors.Is(err, db.ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
	if len(repo.patients) != 0 {
		t.Errorf("stored %d patients, want 0 after rejected creates", len(repo.patients))
	}

	// Boundary values are plausible and accepted.
	_, err := svc.Create(context.Background(), CreateInput{
		FirstName: "Jane", LastName: "Doe",
		Age: intp(150), Weight: floatp(600), Height: floatp(300),
	})
	if err != nil {
		t.Errorf("boundary vitals rejected: %v", err)
	}
}

func TestUpdateRejectsOutOfRangeVitals(t *testing.T) {
	svc := newTestService(newMockRepo())

	v, err := svc.Create(context.Background(), CreateInput{FirstName: "Jane", LastName: "Doe"})
	if err != nil {
		t.Fatal(err)
	}

	age := 200
	if _, err := svc.Update(context.Background(), v.ID, UpdateInput{Age: &age}); !errors.Is(err, db.ErrInvalid) {
		t.Errorf("age: err = %v, want ErrInvalid", err)
	}
	weight := 601.0
	if _, err := svc.Update(context.Background(), v.ID, UpdateInput{Weight: &weight}); !errors.Is(err, db.ErrInvalid) {
		t.Errorf("weight: err = %v, want ErrInvalid", err)
	}
	height := -1.0
	if _, err := svc.Update(context.Background(), v.ID, UpdateInput{Height: &height}); !errors.Is(err, db.ErrInvalid) {
		t.Errorf("height: err = %v, want ErrInvalid", err)
	}
}

func TestCreateRejectsUnknownGender(t *testing.T) {
	svc := newTestService(newMockRepo())

	_, err := svc.Create(context.Background(), CreateInput{FirstName: "Jane", LastName: "Doe", Gender: "Unknown"})
	if !errors.Is(err, db.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	svc := newTestService(newMockRepo())

	in := CreateInput{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(context.Background(), CreateInput{FirstName: "Janet", LastName: "Doer", Email: "jane@example.com"})
	if !errors.Is(err, db.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if !strings.Contains(err.Error(), "jane@example.com") {
		t.Errorf("conflict error %q does not name the email", err)
	}
}

func TestConcurrentDuplicateRegistration(t *testing.T) {
	svc := newTestService(newMockRepo())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), CreateInput{
				FirstName: "Jane", LastName: "Doe", Email: "race@example.com",
			})
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, db.ErrConflict):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Errorf("got %d successes and %d conflicts, want exactly one of each", ok, conflict)
	}
}

func TestDeactivateIsIdempotent(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	v, err := svc.Create(context.Background(), CreateInput{FirstName: "Jane", LastName: "Doe"})
	if err != nil {
		t.Fatal(err)
	}
	id := v.ID

	if err := svc.Deactivate(context.Background(), id); err != nil {
		t.Fatalf("first deactivate: %v", err)
	}
	if err := svc.Deactivate(context.Background(), id); err != nil {
		t.Fatalf("second deactivate: %v", err)
	}

	if _, err := svc.Get(context.Background(), id); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("get after deactivate: err = %v, want ErrNotFound", err)
	}

	// The row survives the logical delete and stays reachable for updates.
	name := "Janet"
	if _, err := svc.Update(context.Background(), id, UpdateInput{FirstName: &name}); err != nil {
		t.Errorf("update after deactivate: %v", err)
	}
}

func TestListPagesAreDisjoint(t *testing.T) {
	svc := newTestService(newMockRepo())

	for i := 0; i < 5; i++ {
		_, err := svc.Create(context.Background(), CreateInput{
			FirstName: fmt.Sprintf("P%d", i), LastName: "Test",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	seen := make(map[uuid.UUID]bool)
	for offset := 0; offset < 5; offset += 2 {
		page, err := svc.List(context.Background(), 2, offset)
		if err != nil {
			t.Fatal(err)
		}
		if page.Total != 5 {
			t.Errorf("offset %d: total = %d, want 5", offset, page.Total)
		}
		for _, v := range page.Data.([]*View) {
			if seen[v.ID] {
				t.Errorf("patient %s appears on more than one page", v.ID)
			}
			seen[v.ID] = true
		}
	}
	if len(seen) != 5 {
		t.Errorf("pages covered %d patients, want all 5", len(seen))
	}
}

func TestListNormalizesPaging(t *testing.T) {
	svc := newTestService(newMockRepo())

	page, err := svc.List(context.Background(), -3, -10)
	if err != nil {
		t.Fatal(err)
	}
	if page.Limit != 20 || page.Offset != 0 {
		t.Errorf("limit/offset = %d/%d, want defaults 20/0", page.Limit, page.Offset)
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	svc := newTestService(newMockRepo())

	if _, err := svc.Create(context.Background(), CreateInput{
		FirstName: "John", LastName: "Doe", Email: "ajohnson@x.com",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{
		FirstName: "Alice", LastName: "Johnson",
	}); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Search(context.Background(), "JOHN")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("matched %d patients, want 2 (first name and last name / email)", len(got))
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc := newTestService(newMockRepo())

	if _, err := svc.Search(context.Background(), "   "); !errors.Is(err, db.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestUpdateIsPartial(t *testing.T) {
	svc := newTestService(newMockRepo())

	v, err := svc.Create(context.Background(), CreateInput{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Phone: "555-0101",
	})
	if err != nil {
		t.Fatal(err)
	}

	phone := "555-0202"
	got, err := svc.Update(context.Background(), v.ID, UpdateInput{Phone: &phone})
	if err != nil {
		t.Fatal(err)
	}
	if got.Phone == nil || *got.Phone != phone {
		t.Errorf("phone = %v, want %q", got.Phone, phone)
	}
	if got.FirstName != "Jane" || got.Email == nil || *got.Email != "jane@example.com" {
		t.Error("untouched fields changed during partial update")
	}
}

func TestUpdateClearsOptionalFields(t *testing.T) {
	svc := newTestService(newMockRepo())

	v, err := svc.Create(context.Background(), CreateInput{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}

	blank := ""
	got, err := svc.Update(context.Background(), v.ID, UpdateInput{Email: &blank})
	if err != nil {
		t.Fatal(err)
	}
	if got.Email != nil {
		t.Errorf("email = %q, want cleared to absent", *got.Email)
	}

	// A second patient can now register the freed address: a cleared email
	// drops out of the uniqueness constraint entirely.
	if _, err := svc.Create(context.Background(), CreateInput{
		FirstName: "Janet", LastName: "Doer", Email: "jane@example.com",
	}); err != nil {
		t.Errorf("freed email rejected: %v", err)
	}
}

func TestUpdateRejectsEmptiedName(t *testing.T) {
	svc := newTestService(newMockRepo())

	v, err := svc.Create(context.Background(), CreateInput{FirstName: "Jane", LastName: "Doe"})
	if err != nil {
		t.Fatal(err)
	}

	blank := " "
	if _, err := svc.Update(context.Background(), v.ID, UpdateInput{LastName: &blank}); !errors.Is(err, db.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestUpdateRejectsMalformedBirthDate(t *testing.T) {
	svc := newTestService(newMockRepo())

	v, err := svc.Create(context.Background(), CreateInput{FirstName: "Jane", LastName: "Doe"})
	if err != nil {
		t.Fatal(err)
	}

	bad := "June 15th"
	if _, err := svc.Update(context.Background(), v.ID, UpdateInput{BirthDate: &bad}); !errors.Is(err, db.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestUpdateMissingPatient(t *testing.T) {
	svc := newTestService(newMockRepo())

	name := "Jane"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{FirstName: &name})
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestViewIncludesConsultationTotal(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, fixedCounter{n: 3})
	svc.now = func() time.Time { return time.Date(2024, 8, 30, 12, 0, 0, 0, time.UTC) }

	v, err := svc.Create(context.Background(), CreateInput{FirstName: "Jane", LastName: "Doe"})
	if err != nil {
		t.Fatal(err)
	}
	if v.TotalConsultations != 3 {
		t.Errorf("total consultations = %d, want 3", v.TotalConsultations)
	}
}

func TestPurgeRemovesRow(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	v, err := svc.Create(context.Background(), CreateInput{FirstName: "Jane", LastName: "Doe"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Purge(context.Background(), v.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := repo.patients[v.ID]; ok {
		t.Error("row still present after purge")
	}
}
