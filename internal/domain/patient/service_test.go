package patient

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"
)

// -- Mock Repository --

type mockRepo struct {
	compliance map[int64]*Compliance
	history    map[int64][]*ConsumptionRecord
	nextID     int64

	lastParams   ListParams
	lastGender   string
	lastPassword string
	failWith     error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		compliance: make(map[int64]*Compliance),
		history:    make(map[int64][]*ConsumptionRecord),
		nextID:     1,
	}
}

func (m *mockRepo) ListCompliance(_ context.Context, params ListParams) ([]*Compliance, int, error) {
	if m.failWith != nil {
		return nil, 0, m.failWith
	}
	m.lastParams = params

	var all []*Compliance
	for _, c := range m.compliance {
		if params.Search != "" &&
			!strings.Contains(strings.ToLower(c.Name), strings.ToLower(params.Search)) &&
			!strings.Contains(c.RMNumber, params.Search) {
			continue
		}
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CompliancePercentage != all[j].CompliancePercentage {
			return all[i].CompliancePercentage > all[j].CompliancePercentage
		}
		return all[i].Name < all[j].Name
	})

	total := len(all)
	if params.Offset >= len(all) {
		return nil, total, nil
	}
	end := params.Offset + params.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[params.Offset:end], total, nil
}

func (m *mockRepo) GetCompliance(_ context.Context, id int64) (*Compliance, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	c, ok := m.compliance[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockRepo) Create(_ context.Context, name, password, gender string, birthDate *string) (*Created, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.lastGender = gender
	m.lastPassword = password
	id := m.nextID
	m.nextID++
	m.compliance[id] = &Compliance{
		Patient: Patient{ID: id, Name: name, RMNumber: fmt.Sprintf("RM%06d", id), CreatedAt: time.Now()},
	}
	return &Created{
		ID:        id,
		RMNumber:  fmt.Sprintf("RM%06d", id),
		Name:      name,
		Gender:    GenderCode(gender),
		CreatedAt: time.Now(),
	}, nil
}

func (m *mockRepo) Exists(_ context.Context, id int64) (bool, error) {
	if m.failWith != nil {
		return false, m.failWith
	}
	_, ok := m.compliance[id]
	return ok, nil
}

func (m *mockRepo) ConsumptionHistory(_ context.Context, id int64, limit int) ([]*ConsumptionRecord, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	records := m.history[id]
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *mockRepo) Statistics(_ context.Context) (*Statistics, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	stats := &Statistics{}
	for _, c := range m.compliance {
		if c.TotalDoses == 0 {
			continue
		}
		stats.TotalPatients++
		switch {
		case c.CompliancePercentage >= HighComplianceMin:
			stats.HighCompliance++
		case c.CompliancePercentage >= MediumComplianceMin:
			stats.MediumCompliance++
		default:
			stats.LowCompliance++
		}
	}
	return stats, nil
}

func seedCompliance(m *mockRepo, name string, pct float64, doses int) *Compliance {
	id := m.nextID
	m.nextID++
	c := &Compliance{
		Patient: Patient{
			ID:       id,
			Name:     name,
			RMNumber: fmt.Sprintf("RM%06d", id),
		},
		CompliancePercentage: pct,
		TotalDoses:           doses,
		MedicineName:         "Paracetamol",
	}
	m.compliance[id] = c
	return c
}

// -- Tests --

func TestCreate_RequiresName(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Create(context.Background(), &CreateRequest{})
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}

	_, err = svc.Create(context.Background(), &CreateRequest{Name: "   "})
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired for whitespace name, got %v", err)
	}
}

func TestCreate_AppliesDefaults(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), &CreateRequest{Name: "Budi Santoso"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("expected id 1, got %d", created.ID)
	}
	if created.RMNumber != "RM000001" {
		t.Errorf("expected RM000001, got %s", created.RMNumber)
	}
	if created.Name != "Budi Santoso" {
		t.Errorf("expected name preserved, got %s", created.Name)
	}
	if repo.lastGender != DefaultGender {
		t.Errorf("expected default gender %q, got %q", DefaultGender, repo.lastGender)
	}
	if repo.lastPassword != DefaultPassword {
		t.Errorf("expected default password, got %q", repo.lastPassword)
	}
	if created.Gender != "L" {
		t.Errorf("expected gender code L for default gender, got %q", created.Gender)
	}
}

func TestCreate_KeepsExplicitValues(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), &CreateRequest{
		Name:     "Siti Aminah",
		Gender:   "Perempuan",
		Password: "rahasia123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastGender != "Perempuan" {
		t.Errorf("expected explicit gender kept, got %q", repo.lastGender)
	}
	if repo.lastPassword != "rahasia123" {
		t.Errorf("expected explicit password kept, got %q", repo.lastPassword)
	}
}

func TestCreate_RMNumberFormat(t *testing.T) {
	repo := newMockRepo()
	repo.nextID = 123456
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), &CreateRequest{Name: "Siti Aminah"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.RMNumber != "RM123456" {
		t.Errorf("expected RM123456, got %s", created.RMNumber)
	}
}

func TestListCompliance_TrimsSearch(t *testing.T) {
	repo := newMockRepo()
	seedCompliance(repo, "Budi Santoso", 90, 10)
	svc := NewService(repo)

	_, _, err := svc.ListCompliance(context.Background(), "  budi  ", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastParams.Search != "budi" {
		t.Errorf("expected trimmed search, got %q", repo.lastParams.Search)
	}
}

func TestListCompliance_EmptySearchMatchesOmitted(t *testing.T) {
	repo := newMockRepo()
	seedCompliance(repo, "Budi Santoso", 90, 10)
	seedCompliance(repo, "Siti Aminah", 70, 8)
	svc := NewService(repo)

	omitted, totalOmitted, err := svc.ListCompliance(context.Background(), "", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blank, totalBlank, err := svc.ListCompliance(context.Background(), "   ", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if totalOmitted != totalBlank || len(omitted) != len(blank) {
		t.Errorf("blank search should behave like omitted search: %d/%d vs %d/%d",
			len(omitted), totalOmitted, len(blank), totalBlank)
	}
	if repo.lastParams.Search != "" {
		t.Errorf("expected empty search param, got %q", repo.lastParams.Search)
	}
}

func TestListCompliance_OrdersByComplianceThenName(t *testing.T) {
	repo := newMockRepo()
	seedCompliance(repo, "Zainal", 70, 5)
	seedCompliance(repo, "Budi", 90, 5)
	seedCompliance(repo, "Andi", 70, 5)
	svc := NewService(repo)

	list, _, err := svc.ListCompliance(context.Background(), "", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 patients, got %d", len(list))
	}
	if list[0].Name != "Budi" {
		t.Errorf("expected highest compliance first, got %s", list[0].Name)
	}
	if list[1].Name != "Andi" || list[2].Name != "Zainal" {
		t.Errorf("expected name ASC within equal compliance, got %s then %s", list[1].Name, list[2].Name)
	}
}

func TestGetCompliance_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.GetCompliance(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConsumptionHistory_AppliesStatusLabels(t *testing.T) {
	repo := newMockRepo()
	c := seedCompliance(repo, "Budi Santoso", 75, 3)
	repo.history[c.ID] = []*ConsumptionRecord{
		{ID: 1, Percentage: 95},
		{ID: 2, Percentage: 80},
		{ID: 3, Percentage: 79.99},
		{ID: 4, Percentage: 50},
		{ID: 5, Percentage: 49.99},
	}
	svc := NewService(repo)

	records, err := svc.ConsumptionHistory(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{StatusTaken, StatusTaken, StatusLate, StatusLate, StatusMissed}
	for i, rec := range records {
		if rec.Status != want[i] {
			t.Errorf("record %d (%.2f%%): expected status %q, got %q", i, rec.Percentage, want[i], rec.Status)
		}
	}
}

func TestConsumptionHistory_UnknownPatient(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.ConsumptionHistory(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStatistics_Buckets(t *testing.T) {
	repo := newMockRepo()
	seedCompliance(repo, "A", 95, 5)
	seedCompliance(repo, "B", 80, 5)
	seedCompliance(repo, "C", 65, 5)
	seedCompliance(repo, "D", 50, 5)
	seedCompliance(repo, "E", 20, 5)
	svc := NewService(repo)

	stats, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.HighCompliance != 2 {
		t.Errorf("expected 2 high, got %d", stats.HighCompliance)
	}
	if stats.MediumCompliance != 2 {
		t.Errorf("expected 2 medium, got %d", stats.MediumCompliance)
	}
	if stats.LowCompliance != 1 {
		t.Errorf("expected 1 low, got %d", stats.LowCompliance)
	}
	if stats.TotalPatients != 5 {
		t.Errorf("expected 5 total, got %d", stats.TotalPatients)
	}
}

func TestStatistics_ExcludesUnmonitored(t *testing.T) {
	repo := newMockRepo()
	seedCompliance(repo, "Monitored", 90, 5)
	unmonitored := seedCompliance(repo, "Unmonitored", 0, 0)
	unmonitored.TotalDoses = 0
	svc := NewService(repo)

	stats, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalPatients != 1 {
		t.Errorf("expected only monitored patients counted, got %d", stats.TotalPatients)
	}
}

func TestService_PropagatesRepoError(t *testing.T) {
	repo := newMockRepo()
	repo.failWith = errors.New("connection refused")
	svc := NewService(repo)

	if _, _, err := svc.ListCompliance(context.Background(), "", 10, 0); err == nil {
		t.Error("expected list error")
	}
	if _, err := svc.Statistics(context.Background()); err == nil {
		t.Error("expected statistics error")
	}
}
