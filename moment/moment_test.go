package moment

import "testing"

func TestMergeMoment(t *testing.T) {
	ab, ok := Measurement(0).Merge(Measurement(0))
	if !ok || !ab.ShouldTakeMeasurements() || ab.ShouldUpdateSignals() || ab.Timestamp() != 0 {
		t.Fatalf("measurement+measurement = %+v", ab)
	}

	ab, ok = Measurement(1).Merge(SignalUpdate(1))
	if !ok || !ab.ShouldTakeMeasurements() || !ab.ShouldUpdateSignals() || ab.Timestamp() != 1 {
		t.Fatalf("measurement+signal = %+v", ab)
	}

	ab, ok = SignalUpdate(2).Merge(SignalUpdate(2))
	if !ok || ab.ShouldTakeMeasurements() || !ab.ShouldUpdateSignals() || ab.Timestamp() != 2 {
		t.Fatalf("signal+signal = %+v", ab)
	}

	ab, ok = SignalUpdate(3).Merge(Measurement(3))
	if !ok || !ab.ShouldTakeMeasurements() || !ab.ShouldUpdateSignals() || ab.Timestamp() != 3 {
		t.Fatalf("signal+measurement = %+v", ab)
	}

	if _, ok := SignalUpdate(4).Merge(Measurement(5)); ok {
		t.Fatal("expected merge of different timestamps to fail")
	}
}
