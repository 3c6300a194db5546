package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/99minutos/rental-system/internal/core/domain"
	"github.com/99minutos/rental-system/internal/protocol"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 2)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	priceStyle   = cellStyle.Align(lipgloss.Right)
)

func banner() string {
	return titleStyle.Render("Car & Bike Rental\nClient")
}

func menu(loggedIn bool, who string) string {
	items := []string{"1. Register", "2. Login"}
	if loggedIn {
		items = append(items, "3. List available cars", "4. List available bikes", "5. Logout")
	}
	items = append(items, "0. Exit")

	header := sectionStyle.Render("Main menu")
	if loggedIn {
		header += dimStyle.Render("  signed in as " + who)
	}
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{header}, items...)...)
}

func success(format string, args ...any) string {
	return okStyle.Render("[OK] " + fmt.Sprintf(format, args...))
}

func failure(format string, args ...any) string {
	return errStyle.Render("[ERROR] " + fmt.Sprintf(format, args...))
}

// vehicleTable renders one row per vehicle with the price right aligned.
func vehicleTable(t domain.VehicleType, vehicles []domain.Vehicle) string {
	if len(vehicles) == 0 {
		return dimStyle.Render(fmt.Sprintf("No %s available right now.", pluralize(t)))
	}

	rows := make([][]string, 0, len(vehicles))
	for _, v := range vehicles {
		rows = append(rows, []string{
			strconv.FormatInt(v.ID, 10),
			v.Brand,
			v.Model,
			v.RegNumber,
			protocol.FormatPrice(v.PricePerDay),
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("ID", "BRAND", "MODEL", "REG NUMBER", "PRICE/DAY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 4:
				return priceStyle
			default:
				return cellStyle
			}
		})

	return lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render(fmt.Sprintf("Available %s (%d)", pluralize(t), len(vehicles))),
		tbl.String(),
	)
}

func pluralize(t domain.VehicleType) string {
	if t == domain.VehicleBike {
		return "bikes"
	}
	return "cars"
}
