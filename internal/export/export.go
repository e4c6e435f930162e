// Package export renders a group's expenses as an xlsx workbook.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	sheetExpenses = "Expenses"
	sheetShares   = "Shares"
	sheetBalances = "Balances"

	dateLayout = "2006-01-02"

	// Built-in number format "0.00".
	numFmtMoney = 2
)

// Filename returns the download name for a group export taken at now.
func Filename(group *models.Group, now time.Time) string {
	return fmt.Sprintf("expenses_%s_%s.xlsx", group.ID[:min(8, len(group.ID))], now.Format("20060102"))
}

// Workbook builds a workbook with one sheet of expenses, one of individual
// shares and one of member balances. names maps user IDs to display names;
// unknown IDs are written as-is.
func Workbook(group *models.Group, expenses []models.Expense, balances []calculator.MemberBalance, names map[string]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", sheetExpenses); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, sheet := range []string{sheetShares, sheetBalances} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	w := &sheetWriter{f: f, bold: bold, money: money}

	w.header(sheetExpenses, "Date", "Title", "Category", "Paid by", "Amount", "Split", "Settled", "Description")
	for i, e := range expenses {
		settled := "no"
		if e.FullySettled() {
			settled = "yes"
		}
		w.row(sheetExpenses, i+2,
			time.Unix(e.ExpenseDate, 0).UTC().Format(dateLayout),
			e.Title,
			e.Category,
			name(e.PayerID),
			e.Amount.InexactFloat64(),
			string(e.SplitMethod),
			settled,
			e.Description,
		)
		w.moneyCol(sheetExpenses, 5, i+2)
	}

	w.header(sheetShares, "Date", "Expense", "Member", "Owes", "Paid", "Method", "Settled on")
	row := 2
	for _, e := range expenses {
		for _, p := range e.Participations {
			paid, method, settledOn := "no", "", ""
			if p.Paid {
				paid, method = "yes", string(p.Method)
				settledOn = time.Unix(p.SettledAt, 0).UTC().Format(dateLayout)
			}
			w.row(sheetShares, row,
				time.Unix(e.ExpenseDate, 0).UTC().Format(dateLayout),
				e.Title,
				name(p.MemberID),
				p.Share.InexactFloat64(),
				paid,
				method,
				settledOn,
			)
			w.moneyCol(sheetShares, 4, row)
			row++
		}
	}

	w.header(sheetBalances, "Member", "Net", "Owed to member", "Owed by member", "Open shares")
	for i, b := range balances {
		w.row(sheetBalances, i+2,
			name(b.MemberID),
			b.Net.InexactFloat64(),
			b.OwedToMember.InexactFloat64(),
			b.OwedByMember.InexactFloat64(),
			b.OpenShares,
		)
		for col := 2; col <= 4; col++ {
			w.moneyCol(sheetBalances, col, i+2)
		}
	}
	w.width(sheetExpenses, "B", "B", 30)
	w.width(sheetExpenses, "H", "H", 40)
	w.width(sheetShares, "B", "C", 25)
	w.width(sheetBalances, "A", "A", 25)
	if w.err != nil {
		return nil, fmt.Errorf("failed to write workbook for group %s: %w", group.ID, w.err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so rows can be written without checking each cell.
type sheetWriter struct {
	f     *excelize.File
	bold  int
	money int
	err   error
}

func (w *sheetWriter) header(sheet string, titles ...string) {
	values := make([]any, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	w.row(sheet, 1, values...)
	if w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, "A1", last, w.bold)
}

func (w *sheetWriter) row(sheet string, row int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *sheetWriter) moneyCol(sheet string, col, row int) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, cell, cell, w.money)
}

func (w *sheetWriter) width(sheet, startCol, endCol string, width float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetColWidth(sheet, startCol, endCol, width)
}
