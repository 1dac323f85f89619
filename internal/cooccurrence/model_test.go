package cooccurrence

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"smart-grocery/internal/database"
	"smart-grocery/internal/shared"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestModelExample(t *testing.T) {
	m := NewModel()
	m.Observe([]string{"milk", "bread"})
	m.Observe([]string{"milk", "eggs"})
	m.Observe([]string{"milk", "bread"})

	tests := []struct {
		a, b string
		want int
	}{
		{"milk", "bread", 2},
		{"bread", "milk", 2},
		{"milk", "eggs", 1},
		{"bread", "eggs", 0},
		{"milk", "milk", 0},
		{"milk", "caviar", 0},
		{"unknown", "other", 0},
		{" MILK ", "Bread", 2},
	}
	for _, tt := range tests {
		if got := m.Similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("Similarity(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestObserveEdgeCases(t *testing.T) {
	m := NewModel()
	m.Observe(nil)
	m.Observe([]string{})
	m.Observe([]string{"milk"})
	m.Observe([]string{"milk", " Milk", "MILK"})

	if len(m.Pairs()) != 0 || m.Baskets() != 0 {
		t.Errorf("Expected empty and singleton baskets to be no-ops, got %v", m.Pairs())
	}

	m.Observe([]string{"a", "b", "c"})
	want := map[Pair]int{
		{A: "a", B: "b"}: 1,
		{A: "a", B: "c"}: 1,
		{A: "b", B: "c"}: 1,
	}
	if got := m.Pairs(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestObserveIsCommutative(t *testing.T) {
	baskets := [][]string{
		{"milk", "cereal", "banana"},
		{"white bread", "jam", "butter"},
		{"milk", "cookies"},
		{"white bread", "peanut butter"},
		{"milk", "cereal"},
		{"butter", "milk", "white bread"},
	}

	reference := NewModel()
	for _, b := range baskets {
		reference.Observe(b)
	}
	want := reference.Pairs()

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([][]string(nil), baskets...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		m := NewModel()
		for _, b := range shuffled {
			m.Observe(b)
		}
		if got := m.Pairs(); !reflect.DeepEqual(got, want) {
			t.Fatalf("Permutation %d produced %v, want %v", i, got, want)
		}
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	m := NewModel()
	m.Observe([]string{"a", "b", "c"})
	m.Observe([]string{"c", "a"})
	for p := range m.Pairs() {
		if m.Similarity(p.A, p.B) != m.Similarity(p.B, p.A) {
			t.Errorf("Asymmetric pair %v", p)
		}
	}
}

func TestModelConcurrentObserve(t *testing.T) {
	m := NewModel()

	const workers = 20
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				m.Observe([]string{"milk", "bread"})
				m.View(func(r Reader) {
					// A reader never sees one direction of a pair updated
					// without the other.
					if r.Similarity("milk", "bread") != r.Similarity("bread", "milk") {
						t.Error("Observed a torn pair")
					}
				})
			}
		}()
	}
	wg.Wait()

	if got := m.Similarity("milk", "bread"); got != workers*perWorker {
		t.Errorf("Expected %d, got %d", workers*perWorker, got)
	}
}

func TestNormalizeBasket(t *testing.T) {
	got := NormalizeBasket([]string{" Milk", "bread", "", "MILK", "  "})
	want := []string{"bread", "milk"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

type failingBasketRepository struct{}

func (failingBasketRepository) Append(ctx context.Context, basket []string) (int64, error) {
	return 0, errors.New("disk full")
}

func (failingBasketRepository) All(ctx context.Context) ([][]string, error) {
	return nil, errors.New("disk full")
}

func TestJournal(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordObserves", func(t *testing.T) {
		j := NewJournal(NewMemoryBasketRepository(), NewModel())
		if _, err := j.Record(ctx, []string{"Milk", "bread"}); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got := j.Model().Similarity("milk", "bread"); got != 1 {
			t.Errorf("Expected similarity 1, got %d", got)
		}
	})

	t.Run("EmptyBasketRejected", func(t *testing.T) {
		j := NewJournal(NewMemoryBasketRepository(), NewModel())
		if _, err := j.Record(ctx, []string{" ", ""}); !shared.IsValidation(err) {
			t.Errorf("Expected ValidationError, got %v", err)
		}
	})

	t.Run("FailedAppendDoesNotObserve", func(t *testing.T) {
		j := NewJournal(failingBasketRepository{}, NewModel())
		if _, err := j.Record(ctx, []string{"milk", "bread"}); err == nil {
			t.Fatal("Expected an error, got nil")
		}
		if got := j.Model().Similarity("milk", "bread"); got != 0 {
			t.Errorf("Expected similarity 0 after failed record, got %d", got)
		}
	})
}

func TestJournalReplayFromSQL(t *testing.T) {
	ctx := context.Background()

	db, err := database.NewMemoryDB()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := NewSQLBasketRepository(db.SQL, logrus.New())
	first := NewJournal(repo, NewModel())
	for _, b := range [][]string{{"milk", "bread"}, {"milk", "eggs"}, {"milk", "bread"}, {"tea"}} {
		if _, err := first.Record(ctx, b); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	restarted := NewJournal(repo, NewModel())
	n, err := restarted.Replay(ctx)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Expected 4 stored baskets, got %d", n)
	}
	if !reflect.DeepEqual(restarted.Model().Pairs(), first.Model().Pairs()) {
		t.Errorf("Replayed table %v differs from live table %v", restarted.Model().Pairs(), first.Model().Pairs())
	}
}

func TestSQLBasketRepositorySkipsUndecodableRows(t *testing.T) {
	ctx := context.Background()

	db, err := database.NewMemoryDB()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	logger, hook := test.NewNullLogger()
	repo := NewSQLBasketRepository(db.SQL, logger)
	if _, err := repo.Append(ctx, []string{"milk", "bread"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := db.SQL.ExecContext(ctx, `INSERT INTO baskets (basket_json, recorded_at) VALUES ('not json', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("Failed to insert corrupt row: %v", err)
	}

	baskets, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(baskets) != 1 {
		t.Errorf("Expected 1 decodable basket, got %d", len(baskets))
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("Expected a warning for the corrupt row, got %v", entry)
	}
	if entry.Data["basketID"] != int64(2) {
		t.Errorf("Expected basketID 2 in the log entry, got %v", entry.Data["basketID"])
	}
}
