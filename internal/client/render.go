package client

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MKhiriev/go-bill-keeper/internal/ledger"
	"github.com/MKhiriev/go-bill-keeper/models"
)

const uiDivider = "──────────────────────────────────────────────────────"

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	helpStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))

	statusStyles = map[models.SyncStatus]lipgloss.Style{
		models.SyncStatusLocal:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		models.SyncStatusModified: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		models.SyncStatusSyncing:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		models.SyncStatusSynced:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		models.SyncStatusConflict: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		models.SyncStatusError:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

func renderStatus(s models.SyncStatus) string {
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(string(s))
}

func renderPage(title, data string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(uiDivider)
	b.WriteString("\n")

	if strings.TrimSpace(data) != "" {
		for _, line := range strings.Split(strings.TrimRight(data, "\n"), "\n") {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	} else {
		b.WriteString("  -\n")
	}

	return b.String()
}

func renderBillList(bills []models.LocalBill) string {
	if len(bills) == 0 {
		return helpStyle.Render("no bills yet, create one with `create <name>` or `join <code>`") + "\n"
	}

	idWidth := lipgloss.Width("ID")
	for _, b := range bills {
		if w := lipgloss.Width(b.LocalID); w > idWidth {
			idWidth = w
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %-24s  %-10s  %7s  %s\n", idWidth, "ID", "NAME", "STATUS", "VERSION", "SHARE")
	for _, bill := range bills {
		status := renderStatus(bill.SyncStatus)
		// pad on the plain text, styles add invisible bytes
		pad := strings.Repeat(" ", max(0, 10-lipgloss.Width(status)))
		fmt.Fprintf(&b, "%-*s  %-24s  %s%s  %7d  %s\n",
			idWidth, bill.LocalID, fitText(bill.State.Name, 24), status, pad, bill.Version, valueOrDash(bill.ShareCode))
	}
	return b.String()
}

func renderBill(bill models.LocalBill) string {
	var b strings.Builder
	s := bill.State

	fmt.Fprintf(&b, "ID:      %s\n", bill.LocalID)
	fmt.Fprintf(&b, "Remote:  %s\n", valueOrDash(bill.RemoteID))
	fmt.Fprintf(&b, "Share:   %s\n", valueOrDash(bill.ShareCode))
	fmt.Fprintf(&b, "Version: %d\n", bill.Version)
	fmt.Fprintf(&b, "Status:  %s", renderStatus(bill.SyncStatus))
	if bill.HasUnsent() {
		b.WriteString(helpStyle.Render(" (unsent changes)"))
	}
	b.WriteString("\n")
	if bill.SyncError != "" {
		fmt.Fprintf(&b, "Error:   %s\n", errorStyle.Render(bill.SyncError))
	}

	b.WriteString("\nMembers\n")
	for _, m := range ledger.SortedMembers(s) {
		fmt.Fprintf(&b, "  %s  %s\n", m.LocalID, m.Name)
	}

	b.WriteString("\nExpenses\n")
	for _, e := range ledger.SortedExpenses(s) {
		fmt.Fprintf(&b, "  %s  %s  %s  paid by %s  split %s\n",
			e.LocalID, fitText(e.Name, 24), e.Amount.StringFixed(2), memberName(s, e.PaidBy), memberNames(s, e.Participants))
		for _, it := range ledger.SortedItems(s) {
			if it.ExpenseID != e.LocalID {
				continue
			}
			fmt.Fprintf(&b, "      %s  %s  %s  split %s\n", it.LocalID, fitText(it.Name, 20), it.Amount.StringFixed(2), memberNames(s, it.Participants))
		}
	}

	b.WriteString("\nSettlements\n")
	for _, st := range ledger.SortedSettlements(s) {
		fmt.Fprintf(&b, "  %s  %s -> %s  %s\n", st.LocalID, memberName(s, st.FromMember), memberName(s, st.ToMember), st.Amount.StringFixed(2))
	}

	return renderPage(s.Name, b.String())
}

func renderBalances(bill models.LocalBill, balances models.Balances) string {
	var b strings.Builder
	s := bill.State

	fmt.Fprintf(&b, "%-16s  %10s  %10s  %10s\n", "MEMBER", "PAID", "OWED", "NET")
	for _, m := range balances.Members {
		name := m.Name
		if name == "" {
			name = memberName(s, m.MemberID)
		}
		fmt.Fprintf(&b, "%-16s  %10s  %10s  %10s\n", fitText(name, 16), m.Paid.StringFixed(2), m.Owed.StringFixed(2), m.Net.StringFixed(2))
	}

	if len(balances.Transfers) > 0 {
		b.WriteString("\nTo settle up\n")
		for _, t := range balances.Transfers {
			fmt.Fprintf(&b, "  %s pays %s %s\n", memberName(s, t.FromMember), memberName(s, t.ToMember), t.Amount.StringFixed(2))
		}
	}

	return renderPage("Balances of "+s.Name, b.String())
}

func renderSyncResult(res models.SyncResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", res.BillLocalID, res.Outcome)
	if res.Mode != "" && res.Mode != models.SyncModeNone {
		fmt.Fprintf(&b, " (%s", res.Mode)
		if res.Rounds > 1 {
			fmt.Fprintf(&b, ", %d rounds", res.Rounds)
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, ", version %d\n", res.Version)

	for _, c := range res.Conflicts {
		field := c.Field
		if field == "" {
			field = "-"
		}
		fmt.Fprintf(&b, "  conflict %s %s %s: %s\n", c.EntityType, c.EntityID, field, c.Resolution)
	}
	return b.String()
}

func memberName(s models.LedgerState, localID string) string {
	if m, ok := s.Members[localID]; ok {
		return m.Name
	}
	return valueOrDash(localID)
}

func memberNames(s models.LedgerState, ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, memberName(s, id))
	}
	return strings.Join(names, ", ")
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func fitText(v string, max int) string {
	r := []rune(v)
	if max <= 0 || len(r) <= max {
		return v
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
