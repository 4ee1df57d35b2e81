package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/oee"
	"github.com/iwtcode/oeeMonitor/internal/synchronizer"
)

func statusIcon(s models.MachineStatus) string {
	switch s {
	case models.StatusProducing:
		return "🟢"
	case models.StatusActive:
		return "🔵"
	case models.StatusStopped:
		return "🔴"
	case models.StatusMaintenance:
		return "🛠"
	default:
		return "⚪"
	}
}

func machineTitle(m models.MachineState) string {
	if m.MachineName != "" && m.MachineName != m.MachineCode {
		return m.MachineCode + " · " + m.MachineName
	}
	return m.MachineCode
}

func sourceLabel(s models.BucketSource) string {
	switch s {
	case models.SourceCache:
		return "кэш"
	case models.SourceSynthetic:
		return "оценка"
	default:
		return "факт"
	}
}

func pct(f float64) string {
	return fmt.Sprintf("%.1f%%", oee.Percent(f))
}

func formatMachinesList(snap synchronizer.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📟 <b>Станки (%d)</b>\n", len(snap.Machines))
	if !snap.LastSyncedAt.IsZero() {
		fmt.Fprintf(&b, "Обновлено: %s\n", snap.LastSyncedAt.Format("15:04:05"))
	}
	if snap.Error != "" {
		fmt.Fprintf(&b, "❌ %s\n", html.EscapeString(snap.Error))
	}
	b.WriteString("\n")
	for _, m := range snap.Machines {
		fmt.Fprintf(&b, "%s <b>%s</b> OEE %s\n",
			statusIcon(m.Status), html.EscapeString(machineTitle(m)), pct(m.OEE.OEE))
	}
	return b.String()
}

func formatMachine(m models.MachineState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📟 <b>%s</b>\n", html.EscapeString(machineTitle(m)))
	fmt.Fprintf(&b, "Статус: %s <b>%s</b>\n", statusIcon(m.Status), m.Status)
	if m.OrderCode != "" {
		fmt.Fprintf(&b, "Заказ: <code>%s</code> %s\n", html.EscapeString(m.OrderCode), html.EscapeString(m.OrderDescription))
	}
	if m.Operator != "" {
		fmt.Fprintf(&b, "Оператор: %s\n", html.EscapeString(m.Operator))
	}
	if m.ShiftLabel != "" {
		fmt.Fprintf(&b, "Смена: %s\n", html.EscapeString(m.ShiftLabel))
	}
	fmt.Fprintf(&b, "\n<b>Смена</b> OK %d · NOK %d · RW %d (всего %d)\n",
		m.ShiftProduction.OK, m.ShiftProduction.NOK, m.ShiftProduction.Rework, m.ShiftProduction.Total)
	fmt.Fprintf(&b, "<b>Заказ</b> OK %d · NOK %d · RW %d (всего %d)\n",
		m.OrderProduction.OK, m.OrderProduction.NOK, m.OrderProduction.Rework, m.OrderProduction.Total)
	fmt.Fprintf(&b, "Скорость: %.0f / %.0f\n", m.Velocity.Current, m.Velocity.Nominal)
	fmt.Fprintf(&b, "\nA %s · P %s · Q %s\n<b>OEE %s</b>",
		pct(m.OEE.Availability), pct(m.OEE.Performance), pct(m.OEE.Quality), pct(m.OEE.OEE))
	return b.String()
}

func formatShiftReport(r *models.ShiftReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>%s / %s</b>\n", html.EscapeString(r.MachineCode), html.EscapeString(r.OrderCode))
	for i, bucket := range r.Buckets {
		fmt.Fprintf(&b, "\n<b>%s</b> (%s)\n", bucket.Shift, sourceLabel(r.Sources[i]))
		if bucket.Empty() {
			b.WriteString("нет данных\n")
			continue
		}
		fmt.Fprintf(&b, "OK %d · NOK %d · RW %d\n", bucket.OK, bucket.NOK, bucket.Rework)
		fmt.Fprintf(&b, "Работа %s · Простой %s · Наладка %s\n",
			seconds(bucket.ProductiveSeconds), seconds(bucket.DowntimeSeconds), seconds(bucket.PreparationSeconds))
		fmt.Fprintf(&b, "OEE %s (P %s)\n", pct(bucket.OEE), pct(bucket.Performance))
	}
	return b.String()
}

func formatStatusChange(m models.MachineState, from models.MachineStatus) string {
	return fmt.Sprintf("⚠️ <b>%s</b>\n%s %s → %s <b>%s</b>",
		html.EscapeString(machineTitle(m)), statusIcon(from), from, statusIcon(m.Status), m.Status)
}

func seconds(s float64) string {
	return (time.Duration(s) * time.Second).Round(time.Minute).String()
}
