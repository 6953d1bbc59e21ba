package prefabecs

import "testing"

type position struct {
	X, Y float64
}

type tag struct {
	Name [16]byte
}

func TestCreateAddGetRemoveComponent(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()

	if _, ok := GetComponent[position](w, e); ok {
		t.Fatalf("expected no position component yet")
	}

	ptr, ok := AddComponent[position](w, e)
	if !ok {
		t.Fatalf("AddComponent failed")
	}
	ptr.X, ptr.Y = 1, 2

	got, ok := GetComponent[position](w, e)
	if !ok || got.X != 1 || got.Y != 2 {
		t.Fatalf("GetComponent returned %+v, ok=%v", got, ok)
	}

	if !SetComponent[position](w, e, position{X: 3, Y: 4}) {
		t.Fatalf("SetComponent failed")
	}
	got, _ = GetComponent[position](w, e)
	if got.X != 3 || got.Y != 4 {
		t.Fatalf("SetComponent did not take effect: %+v", got)
	}

	if !RemoveComponent[position](w, e) {
		t.Fatalf("RemoveComponent failed")
	}
	if HasComponent[position](w, e) {
		t.Fatalf("expected component removed")
	}
}

func TestQueryIteratesAcrossArchetypes(t *testing.T) {
	w := NewWorld()
	e1 := w.CreateEntity()
	SetComponent(w, e1, position{X: 1})
	e2 := w.CreateEntity()
	SetComponent(w, e2, position{X: 2})
	SetComponent(w, e2, tag{})
	w.CreateEntity() // no components, must be skipped

	q := NewQuery[position](w)
	seen := map[uint32]float64{}
	for q.Next() {
		seen[q.Entity().ID] = q.Get().X
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 entities with position, got %d", len(seen))
	}
	if seen[e1.ID] != 1 || seen[e2.ID] != 2 {
		t.Fatalf("unexpected values: %+v", seen)
	}
}

func TestQuery2MatchesEntitiesWithBothComponents(t *testing.T) {
	w := NewWorld()
	e1 := w.CreateEntity()
	SetComponent(w, e1, position{X: 1})
	SetComponent(w, e1, tag{})
	w.CreateEntity() // no components, should not match

	q := NewQuery2[position, tag](w)
	count := 0
	for q.Next() {
		count++
		p, tg := q.Get()
		if p.X != 1 {
			t.Fatalf("unexpected position %+v", p)
		}
		_ = tg
	}
	if count != 1 {
		t.Fatalf("expected 1 match, got %d", count)
	}
}

func TestRemoveEntityFreesSlotAndFixesUpSwap(t *testing.T) {
	w := NewWorld()
	e1 := w.CreateEntity()
	SetComponent(w, e1, position{X: 1})
	e2 := w.CreateEntity()
	SetComponent(w, e2, position{X: 2})

	if !w.RemoveEntity(e1) {
		t.Fatalf("RemoveEntity failed")
	}
	if w.Alive(e1) {
		t.Fatalf("e1 should not be alive")
	}
	got, ok := GetComponent[position](w, e2)
	if !ok || got.X != 2 {
		t.Fatalf("e2 component corrupted after swap-remove: %+v ok=%v", got, ok)
	}
}

func TestNewArchetypeEntitiesBulkCreate(t *testing.T) {
	w := NewWorld()
	id := RegisterComponent[position]()

	arch, start := w.NewArchetypeEntities([]ComponentID{id}, 3)
	if arch.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", arch.Len())
	}
	if start != 0 {
		t.Fatalf("expected start 0, got %d", start)
	}
	col := arch.Column(id)
	if len(col) != 3*int(SizeOf(id)) {
		t.Fatalf("column not sized for 3 elements: %d bytes", len(col))
	}
}
