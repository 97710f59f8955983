package game

import (
	"fmt"

	"ctchen222/roomserver/internal/apperror"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// Status is the lifecycle state of a single game.
type Status string

const (
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusDraw    Status = "draw"

	// StatusWaiting is never held by a Game; rooms report it until a second player arrives.
	StatusWaiting Status = "waiting"

	// Board boundaries
	CellMin   = 0
	CellMax   = 8
	CellCount = 9
)

var (
	ErrGameFinished = fmt.Errorf("%w: game is already finished", apperror.ErrIllegalMove)
	ErrInvalidCell  = fmt.Errorf("%w: invalid cell index", apperror.ErrIllegalMove)
	ErrCellOccupied = fmt.Errorf("%w: cell is already occupied", apperror.ErrIllegalMove)
	ErrNotYourTurn  = fmt.Errorf("%w: it's not your turn", apperror.ErrIllegalMove)
	ErrNotStarted   = fmt.Errorf("%w: game has not started", apperror.ErrIllegalMove)

	// WinLines holds the 3 rows, 3 columns and 2 diagonals.
	WinLines = [8][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Opponent returns the other turn-taking mark.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return None
}

// Game is the authoritative state of one tic-tac-toe game. It is not safe for
// concurrent use; the owning hub is its only writer.
type Game struct {
	Board       [CellCount]PlayerMark
	CurrentTurn PlayerMark
	Status      Status
	Winner      PlayerMark
	Moves       int
}

// NewGame returns an empty board with X to move.
func NewGame() *Game {
	return &Game{
		CurrentTurn: PlayerX,
		Status:      StatusPlaying,
		Winner:      None,
	}
}

// ApplyMove places mark on cell. A rejected move leaves the game untouched.
func (g *Game) ApplyMove(cell int, mark PlayerMark) error {
	if g.Status != StatusPlaying {
		return ErrGameFinished
	}
	if cell < CellMin || cell > CellMax {
		return ErrInvalidCell
	}
	if g.Board[cell] != None {
		return ErrCellOccupied
	}
	if mark != g.CurrentTurn {
		return ErrNotYourTurn
	}

	g.Board[cell] = mark
	g.Moves++

	if winner := CheckWinner(g.Board); winner != None {
		g.Status = StatusWon
		g.Winner = winner
		return nil
	}
	if IsBoardFull(g.Board) {
		g.Status = StatusDraw
		return nil
	}

	g.CurrentTurn = mark.Opponent()
	return nil
}

// IsOver reports whether the game reached a terminal status.
func (g *Game) IsOver() bool {
	return g.Status == StatusWon || g.Status == StatusDraw
}

// CheckWinner returns the mark filling any winning line, or None.
func CheckWinner(board [CellCount]PlayerMark) PlayerMark {
	for _, line := range WinLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != None && a == b && b == c {
			return a
		}
	}
	return None
}

// IsBoardFull checks whether every cell holds a mark.
func IsBoardFull(board [CellCount]PlayerMark) bool {
	for _, cell := range board {
		if cell == None {
			return false
		}
	}
	return true
}
