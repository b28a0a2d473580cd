package core

import (
	"fmt"
	"io"
)

// Stepper owns the outer fetch/decode/execute loop (C8) for one hart. It
// holds nothing Hart itself doesn't already own except the syscall proxy
// and the logging destinations, so embedding programs can swap those
// independently of hart state.
type Stepper struct {
	Hart  *Hart
	Proxy *Proxy

	NoPseudo       bool
	LogInstruction func(pc, raw uint64, length int, p Pseudo, hasPseudo bool, d *DecodedInst)
	LogRegisters   func(h *Hart)
}

// Run executes up to `batch` instructions. It returns StepResult{} with a
// nil error after a full batch retires normally, StepResult{Illegal:true}
// together with the *IllegalInstructionError on the first illegal
// instruction (the caller should stop iterating batches), or StepResult{Exited:true, ExitCode:...} the instant the guest
// calls exit (spec.md §4.8, with the §9 redesign: exit never terminates
// the host process from inside this package).
func (s *Stepper) Run(batch int) (StepResult, error) {
	for i := 0; i < batch; i++ {
		res, err := s.step()
		if err != nil {
			return res, err
		}
		if res.Illegal || res.Exited {
			return res, nil
		}
	}
	return StepResult{}, nil
}

func (s *Stepper) step() (StepResult, error) {
	h := s.Hart
	pc := h.PC

	raw, length := Fetch(h.Mem, pc)

	var d DecodedInst
	if cached, ok := h.Cache.Lookup(raw); ok {
		d = cached
	} else {
		if length == 2 {
			Decompress(&d, raw, h.ISA)
		} else {
			Decode(&d, raw, h.ISA)
		}
		h.Cache.Insert(raw, d)
	}

	if s.LogRegisters != nil {
		s.LogRegisters(h)
	}
	if s.LogInstruction != nil {
		p, ok := Pseudo{}, false
		if !s.NoPseudo {
			p, ok = RecognizePseudo(&d)
		}
		s.LogInstruction(pc, raw, length, p, ok, &d)
	}

	if Execute(h, &d, length) {
		return StepResult{}, nil
	}

	if d.Op == OpECALL {
		res, err := s.Proxy.HandleEcall(h)
		if err != nil {
			return StepResult{}, err
		}
		if res.Exited {
			return res, nil
		}
		h.PC = pc + uint64(length)
		h.instret++
		return StepResult{}, nil
	}

	return StepResult{Illegal: true}, &IllegalInstructionError{PC: pc, Raw: raw, Size: length}
}

// LogDiagnostic writes the standard "illegal instruction" diagnostic line
// the stepper is required to print before returning false (spec.md §7,
// end-to-end scenario 6): PC and raw bytes, at the width implied by the
// instruction's fetched length.
func LogDiagnostic(w io.Writer, err *IllegalInstructionError) {
	fmt.Fprintf(w, "illegal instruction at pc=0x%x: raw=0x%0*x\n", err.PC, err.Size*2, err.Raw)
}
