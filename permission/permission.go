package permission

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// ErrSyntax wraps every parse failure so callers can distinguish a
// malformed expression from other configuration errors.
var ErrSyntax = fmt.Errorf("invalid permission expression")

// An Action is one compiled permission test: the file either must have
// every bit of Mask set, or, when Clear is true, must have them all clear.
type Action struct {
	Mask  fs.FileMode
	Clear bool
}

var permBits = map[[2]byte]fs.FileMode{
	{'u', 'r'}: 0o400,
	{'u', 'w'}: 0o200,
	{'u', 'x'}: 0o100,
	{'g', 'r'}: 0o040,
	{'g', 'w'}: 0o020,
	{'g', 'x'}: 0o010,
	{'o', 'r'}: 0o004,
	{'o', 'w'}: 0o002,
	{'o', 'x'}: 0o001,
	{'u', 's'}: fs.ModeSetuid,
	{'g', 's'}: fs.ModeSetgid,
}

// Compile parses a chmod-like permission expression into an ordered list
// of actions. The expression is either a plain octal integer, or a
// comma-separated list of clauses matching who+ (op perm+)+ with
// who in a,u,g,o and op in +,-,=.
//
// This is a read-only tester: '=' behaves like '+', and the
// copy-permission letters u,g,o in perm position parse but contribute no
// actions. 'X' is treated as 'x', and 't' always means the sticky bit.
func Compile(expr string) ([]Action, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}

	if octal, err := strconv.ParseUint(expr, 8, 32); err == nil {
		return compileOctal(fs.FileMode(octal)), nil
	}

	actions := []Action{}
	for _, clause := range strings.Split(expr, ",") {
		compiled, err := compileClause(clause)
		if err != nil {
			return nil, err
		}
		actions = append(actions, compiled...)
	}
	return actions, nil
}

func compileOctal(mode fs.FileMode) []Action {
	actions := []Action{}
	if mode&0o4000 != 0 {
		actions = append(actions, Action{Mask: fs.ModeSetuid})
	}
	if mode&0o2000 != 0 {
		actions = append(actions, Action{Mask: fs.ModeSetgid})
	}
	if mode&0o1000 != 0 {
		actions = append(actions, Action{Mask: fs.ModeSticky})
	}
	for bit := fs.FileMode(0o400); bit != 0; bit >>= 1 {
		if mode&bit != 0 {
			actions = append(actions, Action{Mask: bit})
		}
	}
	return actions
}

func compileClause(clause string) ([]Action, error) {
	if clause == "" {
		return nil, fmt.Errorf("%w: empty clause", ErrSyntax)
	}

	pos := 0
	whos := ""
	for pos < len(clause) && strings.IndexByte("augo", clause[pos]) != -1 {
		if clause[pos] == 'a' {
			whos += "ugo"
		} else {
			whos += string(clause[pos])
		}
		pos++
	}
	if whos == "" {
		return nil, fmt.Errorf("%w: clause %q has no who letters", ErrSyntax, clause)
	}
	if pos == len(clause) {
		return nil, fmt.Errorf("%w: clause %q has no operator", ErrSyntax, clause)
	}

	actions := []Action{}
	for pos < len(clause) {
		op := clause[pos]
		if op != '+' && op != '-' && op != '=' {
			return nil, fmt.Errorf("%w: bad operator %q in clause %q", ErrSyntax, op, clause)
		}
		pos++

		perms := ""
		for pos < len(clause) && strings.IndexByte("rwxXstugo", clause[pos]) != -1 {
			perms += string(clause[pos])
			pos++
		}
		if perms == "" {
			return nil, fmt.Errorf("%w: operator %q in clause %q has no permissions", ErrSyntax, op, clause)
		}
		if pos < len(clause) && clause[pos] != '+' && clause[pos] != '-' && clause[pos] != '=' {
			return nil, fmt.Errorf("%w: unexpected %q in clause %q", ErrSyntax, clause[pos], clause)
		}

		for i := 0; i < len(whos); i++ {
			for j := 0; j < len(perms); j++ {
				perm := perms[j]
				if perm == 'X' {
					perm = 'x'
				}
				var mask fs.FileMode
				switch perm {
				case 't':
					mask = fs.ModeSticky
				case 'u', 'g', 'o':
					// copy-permission letters have no meaning
					// for a bit test
					continue
				default:
					var ok bool
					mask, ok = permBits[[2]byte{whos[i], perm}]
					if !ok {
						return nil, fmt.Errorf("%w: %c%c in clause %q", ErrSyntax, whos[i], perm, clause)
					}
				}
				actions = append(actions, Action{Mask: mask, Clear: op == '-'})
			}
		}
	}
	return actions, nil
}

// Check evaluates the actions in order against a file mode; the first
// non-matching action fails the whole expression.
func Check(actions []Action, mode fs.FileMode) bool {
	bits := mode.Perm() | mode&(fs.ModeSetuid|fs.ModeSetgid|fs.ModeSticky)
	for _, action := range actions {
		if action.Clear {
			if bits&action.Mask != 0 {
				return false
			}
		} else {
			if bits&action.Mask != action.Mask {
				return false
			}
		}
	}
	return true
}
