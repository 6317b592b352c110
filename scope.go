package transfer

import "strconv"

// placeholderAddress marks an instruction operand whose jump target
// hadn't been seen yet at assembly time; BackPatchLabels overwrites it
// once the label is defined. Grounded on Scope::getReferenceToLabel's
// "#0#" sentinel.
const placeholderAddress = "#0#"

// Scope tracks label-to-address assignment within a single rule or
// macro body being assembled: labels defined so far, and positions
// that referenced a label before it was defined and need
// backpatching once it is. Grounded on scope.{h,cc}.
type Scope struct {
	nextAddress  int
	labelAddress map[string]int
	patchNeeded  map[string][]int // label -> instruction indices to patch
}

// NewScope returns an empty label scope.
func NewScope() *Scope {
	return &Scope{
		labelAddress: make(map[string]int),
		patchNeeded:  make(map[string][]int),
	}
}

// CreateLabelAddress assigns label the current nextAddress and returns
// the assigned address; called when the loader encounters a label
// definition line ("mylabel:").
func (s *Scope) CreateLabelAddress(label string) int {
	addr := s.nextAddress
	s.labelAddress[label] = addr
	return addr
}

// ReferenceLabel returns label's address if already known, or records
// the current end of unit.Code as needing a backpatch and returns
// placeholderAddress as a string for the caller to stash as Op1 in the
// meantime.
func (s *Scope) ReferenceLabel(label string, unit *CodeUnit) string {
	if addr, ok := s.labelAddress[label]; ok {
		return strconv.Itoa(addr)
	}
	s.patchNeeded[label] = append(s.patchNeeded[label], len(unit.Code))
	return placeholderAddress
}

// BackPatchLabels rewrites every instruction operand recorded by
// ReferenceLabel as pending, once every label in the unit has been
// seen.
func (s *Scope) BackPatchLabels(unit *CodeUnit) *Error {
	for label, positions := range s.patchNeeded {
		addr, ok := s.labelAddress[label]
		if !ok {
			return newError("loader", "undefined label %q", label)
		}
		addrStr := strconv.Itoa(addr)
		for _, pos := range positions {
			unit.Code[pos].Op1 = addrStr
			unit.Code[pos].IntOp1 = addr
		}
	}
	return nil
}
