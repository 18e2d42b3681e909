package interval

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestToInterval(t *testing.T) {
	span, ok := ToInterval("08:00-10:30")
	if !ok {
		t.Fatalf("очікували валідний період")
	}
	if span.Start != 480 || span.End != 630 {
		t.Fatalf("очікували 480-630, отримали %d-%d", span.Start, span.End)
	}
}

func TestToIntervalWrapsMidnight(t *testing.T) {
	span, ok := ToInterval("23:00-01:00")
	if !ok {
		t.Fatalf("очікували валідний період")
	}
	if span.End != 25*60 {
		t.Fatalf("очікували перенос через північ, отримали End=%d", span.End)
	}
}

func TestToIntervalInvalid(t *testing.T) {
	cases := []string{"", "08:00", "8.00-10.00", "25:00-26:00", "08:61-09:00", "ab:cd-ef:gh", "08:00—10:00"}
	for _, c := range cases {
		if _, ok := ToInterval(c); ok {
			t.Fatalf("очікували невалідний період для %q", c)
		}
	}
}

func TestMergeOverlap(t *testing.T) {
	got := Merge([]string{"08:00-10:00", "09:00-11:00"})
	want := []string{"08:00-11:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("очікували %v, отримали %v", want, got)
	}
}

func TestMergeTouching(t *testing.T) {
	got := Merge([]string{"08:00-10:00", "10:00-12:00"})
	want := []string{"08:00-12:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("очікували %v, отримали %v", want, got)
	}
}

func TestMergeAcrossMidnight(t *testing.T) {
	got := Merge([]string{"23:00-01:00", "00:30-02:00"})
	want := []string{"23:00-02:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("очікували %v, отримали %v", want, got)
	}
}

func TestMergeAcrossMidnightChained(t *testing.T) {
	got := Merge([]string{"23:00-01:30", "00:15-00:45", "01:00-02:00"})
	want := []string{"23:00-02:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("очікували %v, отримали %v", want, got)
	}
}

func TestMergeAcrossMidnightKeepsDistantMorning(t *testing.T) {
	got := Merge([]string{"23:00-00:30", "06:00-08:00"})
	want := []string{"06:00-08:00", "23:00-00:30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("очікували %v, отримали %v", want, got)
	}
}

func TestMergeKeepsDisjoint(t *testing.T) {
	got := Merge([]string{"14:00-16:00", "08:00-10:00"})
	want := []string{"08:00-10:00", "14:00-16:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("очікували %v, отримали %v", want, got)
	}
}

func TestMergeDropsInvalid(t *testing.T) {
	got := Merge([]string{"08:00-10:00", "сміття", "25:00-26:00"})
	want := []string{"08:00-10:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("очікували %v, отримали %v", want, got)
	}
}

func TestMergeOrderIndependent(t *testing.T) {
	periods := []string{"08:00-10:00", "09:30-11:00", "13:00-14:00", "23:00-01:00", "00:15-02:00"}
	want := Merge(periods)
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]string(nil), periods...)
		rnd.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Merge(shuffled)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("результат залежить від порядку: %v проти %v", got, want)
		}
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil); got != nil {
		t.Fatalf("очікували nil, отримали %v", got)
	}
}
