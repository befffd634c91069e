package notify

import (
	"testing"
)

func TestChangeType_String(t *testing.T) {
	tests := []struct {
		ct   ChangeType
		want string
	}{
		{ChangeSet, "set"},
		{ChangeReload, "reload"},
		{ChangeType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.ct.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.ct, got, tt.want)
		}
	}
}

func TestChange_Affects(t *testing.T) {
	tests := []struct {
		change  Change
		section string
		want    bool
	}{
		{Change{Path: "veco.highlight.enabled"}, "veco.highlight", true},
		{Change{Path: "veco.highlight"}, "veco.highlight", true},
		{Change{Path: "veco"}, "veco.highlight", true},
		{Change{Path: "veco.colorize.enabled"}, "veco.highlight", false},
		{Change{Path: "veco.highlightx"}, "veco.highlight", false},
		{Change{Type: ChangeReload}, "veco.highlight", true},
	}

	for _, tt := range tests {
		if got := tt.change.Affects(tt.section); got != tt.want {
			t.Errorf("Change{%q}.Affects(%q) = %v, want %v", tt.change.Path, tt.section, got, tt.want)
		}
	}
}

func TestNotifier_Subscribe(t *testing.T) {
	n := New()
	defer n.Close()

	received := 0
	sub := n.Subscribe(func(change Change) {
		received++
	})

	n.NotifySet("anything", nil, 1, "test")
	if received != 1 {
		t.Fatalf("received = %d, want 1", received)
	}

	sub.Unsubscribe()
	sub.Unsubscribe()

	n.NotifySet("anything", nil, 2, "test")
	if received != 1 {
		t.Errorf("unsubscribed observer received notification")
	}
	if n.Len() != 0 {
		t.Errorf("Len() = %d, want 0", n.Len())
	}
}

func TestNotifier_SubscribePath(t *testing.T) {
	n := New()
	defer n.Close()

	var highlight, colorize []string
	n.SubscribePath("veco.highlight", func(change Change) {
		highlight = append(highlight, change.Path)
	})
	n.SubscribePath("veco.colorize", func(change Change) {
		colorize = append(colorize, change.Path)
	})

	n.NotifySet("veco.highlight.enabled", true, false, "update")
	n.NotifySet("veco.colorize.enabled", true, false, "update")
	n.NotifyReload("/tmp/settings.yaml")

	if len(highlight) != 2 || highlight[0] != "veco.highlight.enabled" || highlight[1] != "" {
		t.Errorf("highlight observer got %q", highlight)
	}
	if len(colorize) != 2 || colorize[0] != "veco.colorize.enabled" {
		t.Errorf("colorize observer got %q", colorize)
	}
}

func TestNotifier_DeliveryOrder(t *testing.T) {
	n := New()
	defer n.Close()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		n.Subscribe(func(Change) { order = append(order, i) })
	}

	n.NotifyReload("test")

	for i, got := range order {
		if got != i {
			t.Fatalf("delivery order = %v", order)
		}
	}
}

func TestNotifier_Close(t *testing.T) {
	n := New()
	called := false
	n.Subscribe(func(Change) { called = true })

	n.Close()
	n.Close()
	n.NotifyReload("test")

	if called {
		t.Error("observer called after Close")
	}
}

func TestNotifier_ObserverMayUnsubscribe(t *testing.T) {
	n := New()
	defer n.Close()

	var sub *Subscription
	calls := 0
	sub = n.Subscribe(func(Change) {
		calls++
		sub.Unsubscribe()
	})

	n.NotifyReload("a")
	n.NotifyReload("b")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
