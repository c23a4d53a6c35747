// Package seatmap describes the fixed cabin layout: six rows, seats A-C on
// the left of the aisle and D-F on the right.
package seatmap

import "fmt"

const RowCount = 6

var (
	LeftSeats  = []string{"A", "B", "C"}
	RightSeats = []string{"D", "E", "F"}
)

// Rows returns the row numbers 1..RowCount.
func Rows() []int {
	rows := make([]int, RowCount)
	for i := range rows {
		rows[i] = i + 1
	}
	return rows
}

// AllSeats lists every seat code in cabin order (1A..1F, 2A..).
func AllSeats() []string {
	seats := make([]string, 0, RowCount*(len(LeftSeats)+len(RightSeats)))
	for _, row := range Rows() {
		for _, letter := range LeftSeats {
			seats = append(seats, fmt.Sprintf("%d%s", row, letter))
		}
		for _, letter := range RightSeats {
			seats = append(seats, fmt.Sprintf("%d%s", row, letter))
		}
	}
	return seats
}
