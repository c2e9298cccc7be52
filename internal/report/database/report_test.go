package database

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	storage "github.com/go-mvd/mvd/internal/database"
	"github.com/go-mvd/mvd/internal/report/model"
	bolt "go.etcd.io/bbolt"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir, err := ioutil.TempDir("", "mvd-report-db")
	if err != nil {
		t.Fatalf("unable create temp dir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})
	bdb, err := bolt.Open(filepath.Join(dir, "reports.db"), 0600, nil)
	if err != nil {
		t.Fatalf("unable open db: %v", err)
	}
	t.Cleanup(func() {
		_ = bdb.Close()
	})

	return New(&storage.DB{DB: bdb})
}

func testReport(modelID string) model.Report {
	return model.NewReport(modelID, 90, model.RiskLow, model.RiskLow, nil, nil)
}

func TestAppendManyRegistersEveryModel(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	reports := []model.Report{
		testReport("model-a"),
		testReport("model-b"),
		testReport("model-b"),
	}
	if err := db.AppendMany(ctx, reports); err != nil {
		t.Fatalf("append many error: %v", err)
	}

	keys, err := db.Keys()
	if err != nil {
		t.Fatalf("keys error: %v", err)
	}
	sort.Strings(keys)
	expected := []string{"model-a", "model-b"}
	if !reflect.DeepEqual(keys, expected) {
		t.Errorf("keys got %v, expected %v", keys, expected)
	}

	countA, err := db.CountByModel("model-a")
	if err != nil {
		t.Fatalf("count error: %v", err)
	}
	if countA != 1 {
		t.Errorf("model-a count got %d, expected 1", countA)
	}
	countB, err := db.CountByModel("model-b")
	if err != nil {
		t.Fatalf("count error: %v", err)
	}
	if countB != 2 {
		t.Errorf("model-b count got %d, expected 2", countB)
	}
}

func TestFindAllAfterAppendMany(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.AppendMany(ctx, []model.Report{
		testReport("model-a"),
		testReport("model-b"),
	}); err != nil {
		t.Fatalf("append many error: %v", err)
	}

	all, err := db.FindAll(ctx, nil)
	if err != nil {
		t.Fatalf("find all error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("find all got %d reports, expected 2", len(all))
	}

	filtered, err := db.FindAll(ctx, func(r model.Report) bool {
		return r.ModelID == "model-b"
	})
	if err != nil {
		t.Fatalf("find all error: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ModelID != "model-b" {
		t.Errorf("filtered got %v, expected single model-b report", filtered)
	}
}
