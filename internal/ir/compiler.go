package ir

import (
	"fmt"

	"github.com/bfvm/bfvm/internal/token"
)

// UnmatchedBracketError reports a bracket with no partner. Pos is the byte
// offset of the bracket in the raw source; for an unclosed loop it points at
// the first still-open '['.
type UnmatchedBracketError struct {
	Bracket byte // '[' or ']'
	Pos     int
}

func (e *UnmatchedBracketError) Error() string {
	if e.Bracket == '[' {
		return fmt.Sprintf("unclosed '[' at offset %d", e.Pos)
	}
	return fmt.Sprintf("unexpected ']' at offset %d", e.Pos)
}

// pendingLoop records an open bracket awaiting its close: the index of its
// placeholder JZ in the accumulated IR and the bracket's source offset.
type pendingLoop struct {
	irIndex   int
	sourcePos int
}

// Compile lowers a token stream to IR.
//
// Runs of + - < > fold into single ADD/MOVEPTR ops. On ']' the tail of the
// accumulated IR is inspected and whole loops are rewritten into SETZERO,
// MULINTO, or FINDZERO where they match; everything else becomes a JZ/JNZ
// pair with resolved targets. A rewrite only fires when the loop's own JZ
// placeholder sits exactly where the pattern expects it, so loop bodies that
// merely end in a matching shape are left alone.
func Compile(tokens []token.Token) (Program, error) {
	ops := make(Program, 0, len(tokens))
	var open []pendingLoop

	for i := 0; i < len(tokens); {
		tok := tokens[i]
		switch tok.Kind {
		case token.MoveRight:
			n := token.CountRun(tokens, i, tok.Kind)
			ops = append(ops, MovePtr(n))
			i += n

		case token.MoveLeft:
			n := token.CountRun(tokens, i, tok.Kind)
			ops = append(ops, MovePtr(-n))
			i += n

		case token.Increment:
			n := token.CountRun(tokens, i, tok.Kind)
			ops = append(ops, Add(n))
			i += n

		case token.Decrement:
			n := token.CountRun(tokens, i, tok.Kind)
			ops = append(ops, Add(-n))
			i += n

		case token.Output:
			ops = append(ops, Put())
			i++

		case token.Input:
			ops = append(ops, Get())
			i++

		case token.OpenBracket:
			open = append(open, pendingLoop{irIndex: len(ops), sourcePos: tok.Pos})
			ops = append(ops, Jz(0)) // placeholder, patched at the close
			i++

		case token.CloseBracket:
			if len(open) == 0 {
				return nil, &UnmatchedBracketError{Bracket: ']', Pos: tok.Pos}
			}
			opener := open[len(open)-1]
			open = open[:len(open)-1]
			ops = closeLoop(ops, opener.irIndex)
			i++

		default:
			i++
		}
	}

	if len(open) > 0 {
		return nil, &UnmatchedBracketError{Bracket: '[', Pos: open[0].sourcePos}
	}
	return ops, nil
}

// closeLoop resolves the loop whose JZ placeholder sits at saved, trying the
// peephole rewrites in order (clear, copy/multiply, scan) before falling back
// to a paired jump. The five-op copy/multiply match runs before the two-op
// scan match.
func closeLoop(ops Program, saved int) Program {
	n := len(ops)

	// [-] / [+] : the body is a single ±1 add.
	if saved == n-2 &&
		ops[n-2].Kind == OpJz &&
		ops[n-1].Kind == OpAdd && (ops[n-1].Arg == 1 || ops[n-1].Arg == -1) {
		ops = ops[:n-2]
		return append(ops, SetZero())
	}

	// [->>+<<] and friends: decrement-first or decrement-last copy/multiply
	// loops over a single source cell. The moves must cancel out.
	if saved == n-5 && ops[n-5].Kind == OpJz {
		if coef, offset, ok := matchMulInto(ops[n-4:]); ok {
			ops = ops[:n-5]
			return append(ops, MulInto(coef, offset))
		}
	}

	// [>] / [<<] : pure pointer scans.
	if saved == n-2 &&
		ops[n-2].Kind == OpJz && ops[n-1].Kind == OpMovePtr {
		step := ops[n-1].Arg
		ops = ops[:n-2]
		return append(ops, FindZero(step))
	}

	// Plain loop: JZ jumps one past the JNZ, JNZ jumps one past the JZ.
	ops[saved] = Jz(n + 1)
	return append(ops, Jnz(saved+1))
}

// matchMulInto matches the four body ops of a copy/multiply loop,
// returning the coefficient and target offset.
func matchMulInto(body []Op) (coef, offset int, ok bool) {
	// [- >p0 +v1 <p1]
	if body[0].Kind == OpAdd && body[0].Arg == -1 &&
		body[1].Kind == OpMovePtr &&
		body[2].Kind == OpAdd &&
		body[3].Kind == OpMovePtr &&
		body[1].Arg+body[3].Arg == 0 && body[1].Arg != 0 {
		return body[2].Arg, body[1].Arg, true
	}
	// [>p0 +v1 <p1 -]
	if body[0].Kind == OpMovePtr &&
		body[1].Kind == OpAdd &&
		body[2].Kind == OpMovePtr &&
		body[3].Kind == OpAdd && body[3].Arg == -1 &&
		body[0].Arg+body[2].Arg == 0 && body[0].Arg != 0 {
		return body[1].Arg, body[0].Arg, true
	}
	return 0, 0, false
}
