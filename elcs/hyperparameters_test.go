package elcs

import "testing"

func TestDefaultHyperparametersValidate(t *testing.T) {
	if err := DefaultHyperparameters().Validate(); err != nil {
		t.Fatalf("defaults must validate cleanly: %v", err)
	}
}

func TestValidateRejectsOutOfRangeFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Hyperparameters)
	}{
		{"N<=0", func(h *Hyperparameters) { h.N = 0 }},
		{"PSpec>1", func(h *Hyperparameters) { h.PSpec = 1.5 }},
		{"Chi<0", func(h *Hyperparameters) { h.Chi = -0.1 }},
		{"Beta=0", func(h *Hyperparameters) { h.Beta = 0 }},
		{"bad selection method", func(h *Hyperparameters) { h.SelectionMethod = "random" }},
		{"ThetaSel=0", func(h *Hyperparameters) { h.ThetaSel = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := DefaultHyperparameters()
			tc.mutate(&h)
			if err := h.Validate(); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}
