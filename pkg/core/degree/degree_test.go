package degree

import (
	"math/rand"
	"testing"
)

func validDegree() Degree {
	return Degree{
		Name:             "BA",
		MeanEarnings:     41300,
		StdDev:           13000,
		ExperienceGrowth: 0.04,
		YearsToComplete:  4,
		Class:            ClassUndergraduate,
	}
}

func TestValidateAcceptsRealisticTrack(t *testing.T) {
	d := validDegree()
	if err := d.Validate(); err != nil {
		t.Fatalf("expected valid track, got %v", err)
	}
}

func TestValidateRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Degree)
	}{
		{"negative mean", func(d *Degree) { d.MeanEarnings = -1 }},
		{"negative stdev", func(d *Degree) { d.StdDev = -0.5 }},
		{"growth too high", func(d *Degree) { d.ExperienceGrowth = 0.25 }},
		{"growth too low", func(d *Degree) { d.ExperienceGrowth = -0.10 }},
		{"home prob above one", func(d *Degree) { d.HomeProb = 1.5 }},
		{"negative leave prob", func(d *Degree) { d.LeaveLaborForce = -0.1 }},
		{"negative friction", func(d *Degree) { d.EmploymentFriction = -0.01 }},
	}

	for _, tc := range cases {
		d := validDegree()
		tc.mutate(&d)
		if err := d.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestDrawDelayRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	ug := validDegree()
	for i := 0; i < 1000; i++ {
		delay := ug.DrawDelay(rng)
		if delay < 0 || delay > 4 {
			t.Fatalf("undergraduate delay %d outside [0, 4]", delay)
		}
	}

	prof := validDegree()
	prof.Name = "MA"
	prof.Class = ClassProfessional
	for i := 0; i < 1000; i++ {
		delay := prof.DrawDelay(rng)
		if delay < 0 || delay > 3 {
			t.Fatalf("professional delay %d outside [0, 3]", delay)
		}
	}
}

func TestDrawDelayProfessionalTighter(t *testing.T) {
	// Professional programs should finish on time noticeably more often
	// (75% vs 50% by construction).
	rng := rand.New(rand.NewSource(9))

	onTime := func(class CompletionClass) float64 {
		d := validDegree()
		d.Class = class
		hits := 0
		const n = 5000
		for i := 0; i < n; i++ {
			if d.DrawDelay(rng) == 0 {
				hits++
			}
		}
		return float64(hits) / n
	}

	ug := onTime(ClassUndergraduate)
	prof := onTime(ClassProfessional)
	if prof <= ug {
		t.Errorf("expected professional on-time rate (%.3f) above undergraduate (%.3f)", prof, ug)
	}
}

func TestDrawDelayNoAdvancement(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := validDegree()
	d.Class = ClassNone
	for i := 0; i < 100; i++ {
		if delay := d.DrawDelay(rng); delay != 0 {
			t.Fatalf("no-advancement track drew delay %d", delay)
		}
	}
}
