package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var fieldSayings = [...]string{
	"Transplant while the seedlings are young; old seedlings sulk for a week.",
	"Drain the field ten days before harvest and the grain dries on the stalk.",
	"Level land wastes no water.",
	"Split the urea. The crop eats in three meals, not one.",
	"Check the bunds after every heavy rain.",
	"Harvest at eighty percent golden grains, not a day later.",
	"A weed pulled at three weeks saves a sack at harvest.",
	"Keep two to five centimetres of standing water through tillering.",
	"Dry the paddy to fourteen percent before it goes in the store.",
	"The soil remembers last season's straw. Plough it in.",
}

// printFarewell prints a random field saying after logout.
func printFarewell(w io.Writer) {
	msg := fieldSayings[rand.IntN(len(fieldSayings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6bbf4e")).
		Bold(true).
		Render("SMART PADDY")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("To come back: paddy login")

	fmt.Fprintf(w, "\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}
