package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/ameliecafe/storefront/internal/db"
	"github.com/ameliecafe/storefront/internal/model"
	"github.com/ameliecafe/storefront/internal/store"
)

func waitSnapshot(t *testing.T, sub *Subscription) []model.Product {
	t.Helper()
	select {
	case snapshot, ok := <-sub.Snapshots():
		if !ok {
			t.Fatal("snapshot channel closed unexpectedly")
		}
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	store.CreateProduct(ctx, database, "Croissant", "", 1250, "")
	store.CreateProduct(ctx, database, "Baguette", "", 900, "")

	feed := NewFeed(database)
	defer feed.Close()

	sub, err := feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	snapshot := waitSnapshot(t, sub)
	if len(snapshot) != 2 {
		t.Errorf("expected 2 products in initial snapshot, got %d", len(snapshot))
	}
}

func TestBroadcastReplacesWholeSnapshot(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	p1, _ := store.CreateProduct(ctx, database, "Croissant", "", 1250, "")
	store.CreateProduct(ctx, database, "Baguette", "", 900, "")
	store.CreateProduct(ctx, database, "Tordu", "", 1100, "")

	feed := NewFeed(database)
	defer feed.Close()

	sub, err := feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	first := waitSnapshot(t, sub)
	if len(first) != 3 {
		t.Fatalf("expected 3 products, got %d", len(first))
	}

	// Edit one product; the next snapshot must be the full collection with
	// the edit applied, not a patch.
	store.UpdateProduct(ctx, database, p1.ID, "Croissant Pistache", "", 1450, "")
	if err := feed.Broadcast(ctx); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}

	second := waitSnapshot(t, sub)
	if len(second) != 3 {
		t.Fatalf("expected 3 products after edit, got %d", len(second))
	}
	if second[0].Name != "Croissant Pistache" {
		t.Errorf("expected edited name in snapshot, got %q", second[0].Name)
	}
}

func TestSnapshotsDeliveredInOrder(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	feed := NewFeed(database)
	defer feed.Close()

	sub, err := feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	// Publish several broadcasts before the subscriber reads anything. Every
	// intermediate state must arrive, in order, with no coalescing.
	names := []string{"Um", "Dois", "Três", "Quatro"}
	for _, name := range names {
		store.CreateProduct(ctx, database, name, "", 100, "")
		if err := feed.Broadcast(ctx); err != nil {
			t.Fatalf("Broadcast: %v", err)
		}
	}

	// Initial snapshot (empty catalog) first.
	if got := waitSnapshot(t, sub); len(got) != 0 {
		t.Fatalf("expected empty initial snapshot, got %d products", len(got))
	}
	for i := range names {
		snapshot := waitSnapshot(t, sub)
		if len(snapshot) != i+1 {
			t.Fatalf("broadcast %d: expected %d products, got %d", i+1, i+1, len(snapshot))
		}
	}
}

func TestSubscribeDuringBroadcastNeverSettlesStale(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	feed := NewFeed(database)
	defer feed.Close()

	// Race a new subscription against a mutation and its broadcast. Whatever
	// the interleaving, the subscription's settled snapshot must reflect the
	// mutation: a fresh initial snapshot, or a stale one followed by the
	// broadcast — never a stale one last.
	for i := 0; i < 100; i++ {
		type result struct {
			sub *Subscription
			err error
		}
		subscribed := make(chan result, 1)
		go func() {
			sub, err := feed.Subscribe(ctx)
			subscribed <- result{sub, err}
		}()

		if _, err := store.CreateProduct(ctx, database, "Pão", "", 100, ""); err != nil {
			t.Fatalf("CreateProduct: %v", err)
		}
		if err := feed.Broadcast(ctx); err != nil {
			t.Fatalf("Broadcast: %v", err)
		}

		res := <-subscribed
		if res.err != nil {
			t.Fatalf("Subscribe: %v", res.err)
		}

		settled := waitSnapshot(t, res.sub)
		for drained := false; !drained; {
			select {
			case snapshot, ok := <-res.sub.Snapshots():
				if !ok {
					t.Fatal("snapshot channel closed unexpectedly")
				}
				settled = snapshot
			case <-time.After(50 * time.Millisecond):
				drained = true
			}
		}
		res.sub.Close()

		if len(settled) != i+1 {
			t.Fatalf("iteration %d: settled snapshot has %d products, want %d", i, len(settled), i+1)
		}
	}
}

func TestClosedSubscriptionStopsDelivery(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	feed := NewFeed(database)
	defer feed.Close()

	sub, err := feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	waitSnapshot(t, sub)
	sub.Close()
	sub.Close() // idempotent

	// Channel must close; a broadcast after Close must not deliver.
	store.CreateProduct(ctx, database, "Depois", "", 100, "")
	feed.Broadcast(ctx)

	select {
	case _, ok := <-sub.Snapshots():
		if ok {
			t.Error("expected no snapshot after Close")
		}
	case <-time.After(2 * time.Second):
		t.Error("expected snapshot channel to close")
	}
}

func TestSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	feed := NewFeed(database)
	defer feed.Close()

	slow, err := feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer slow.Close()

	fast, err := feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer fast.Close()

	// The slow subscriber never reads. Broadcasts must still reach the fast
	// one promptly.
	for i := 0; i < 10; i++ {
		store.CreateProduct(ctx, database, "Pão", "", 100, "")
		if err := feed.Broadcast(ctx); err != nil {
			t.Fatalf("Broadcast: %v", err)
		}
	}

	var last []model.Product
	for i := 0; i < 11; i++ { // initial + 10 broadcasts
		last = waitSnapshot(t, fast)
	}
	if len(last) != 10 {
		t.Errorf("expected final snapshot with 10 products, got %d", len(last))
	}
}

func TestMirrorLoadingAndReplacement(t *testing.T) {
	database := db.NewTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store.CreateProduct(ctx, database, "Croissant", "", 1250, "")

	feed := NewFeed(database)
	defer feed.Close()

	sub, err := feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	mirror := NewMirror(sub)
	if !mirror.Loading() {
		t.Error("expected mirror to be loading before Run")
	}

	go mirror.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for mirror.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("mirror never received first snapshot")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := mirror.Products(); len(got) != 1 {
		t.Fatalf("expected 1 product, got %d", len(got))
	}

	store.CreateProduct(ctx, database, "Baguette", "", 900, "")
	feed.Broadcast(ctx)

	deadline = time.Now().Add(2 * time.Second)
	for len(mirror.Products()) != 2 {
		if time.Now().After(deadline) {
			t.Fatal("mirror never applied second snapshot")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Loading must never revert to true while running.
	if mirror.Loading() {
		t.Error("loading flag reverted to true after first snapshot")
	}
}
