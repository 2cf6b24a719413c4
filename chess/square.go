package chess

import "fmt"

// A Square indexes the board as rank*8+file, with a1 == 0 and h8 == 63.
type Square int8

const NoSquare Square = -1

func MakeSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

func (s Square) File() int {
	return int(s) % 8
}

func (s Square) Rank() int {
	return int(s) / 8
}

func (s Square) Valid() bool {
	return s >= 0 && s < 64
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+byte(s.File()), '1'+byte(s.Rank()))
}

func ParseSquare(str string) (Square, error) {
	if len(str) != 2 {
		return NoSquare, fmt.Errorf("bad square: %q", str)
	}
	f, r := str[0], str[1]
	if f < 'a' || f > 'h' || r < '1' || r > '8' {
		return NoSquare, fmt.Errorf("bad square: %q", str)
	}
	return MakeSquare(int(f-'a'), int(r-'1')), nil
}

// offset returns the square df files and dr ranks away from s, or
// false if that falls off the board.
func (s Square) offset(df, dr int) (Square, bool) {
	f, r := s.File()+df, s.Rank()+dr
	if f < 0 || f >= 8 || r < 0 || r >= 8 {
		return NoSquare, false
	}
	return MakeSquare(f, r), true
}
