package alerts

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/k3a/html2text"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/tool-maintenance/internal/models"
	"github.com/ukydev/tool-maintenance/internal/recommend"
)

// Service builds and sends the three alert messages: maintenance due,
// high-risk predictions, and the daily summary. Empty inputs send nothing
// and are success.
type Service struct {
	notifier Notifier
	company  string
	urgency  recommend.UrgencyConfig
}

// NewService wires a notifier with the company name used in subjects and
// the urgency windows used for due-date styling.
func NewService(notifier Notifier, company string, urgency recommend.UrgencyConfig) *Service {
	return &Service{notifier: notifier, company: company, urgency: urgency}
}

// highRiskThreshold selects which predictions warrant an alert email.
const highRiskThreshold = 0.8

type dueItem struct {
	Tool    models.Tool
	Urgency recommend.Urgency
}

var maintenanceAlertTmpl = template.Must(template.New("maintenance").Parse(`<html>
<body>
<h2>Tool Maintenance Alert</h2>
<p>{{.Company}} - Tool Inventory System</p>
<p>The following tools require maintenance attention:</p>
{{range .Items}}
<div>
<h4>{{.Tool.ToolName}} ({{.Tool.ToolCode}})</h4>
<p><strong>Category:</strong> {{.Tool.Category}}</p>
<p><strong>Location:</strong> {{.Tool.Location}}</p>
<p><strong>Maintenance Due:</strong> {{.Tool.NextMaintenanceDue.Format "2006-01-02"}}</p>
<p><strong>Status:</strong> {{.Tool.Status}}</p>
<p><strong>Urgency:</strong> {{.Urgency.Text}}</p>
<p><strong>Current Condition:</strong> {{.Tool.ConditionScore}}/10</p>
</div>
{{end}}
<p>This is an automated message from the tool inventory system.</p>
<p>Generated on: {{.Timestamp}}</p>
</body>
</html>`))

var riskAlertTmpl = template.Must(template.New("risk").Parse(`<html>
<body>
<h2>High Risk Tool Alert</h2>
<p>{{.Company}} - Predictive Maintenance</p>
<p>The following tools are at high risk of failure:</p>
{{range .Predictions}}
<div>
<h4>{{.ToolCode}}</h4>
<p><strong>Risk Score:</strong> {{printf "%.1f" .RiskPercent}}%</p>
<p><strong>Priority:</strong> {{.Priority}}</p>
<p><strong>Estimated Failure Date:</strong> {{.FailureDate}}</p>
<p><strong>Days Until Maintenance:</strong> {{.Days}}</p>
</div>
{{end}}
<p>Please take action to prevent tool failures and potential safety issues.</p>
<p>Generated on: {{.Timestamp}}</p>
</body>
</html>`))

var dailySummaryTmpl = template.Must(template.New("summary").Parse(`<html>
<body>
<h2>Daily Tool Inventory Summary</h2>
<p>{{.Company}} - {{.Date}}</p>
<p><strong>Total Tools:</strong> {{.TotalTools}}</p>
<p><strong>Available:</strong> {{.Available}}</p>
<p><strong>In Use:</strong> {{.InUse}}</p>
<p><strong>Need Maintenance:</strong> {{.DueCount}}</p>
<p><strong>Total Usage Hours:</strong> {{printf "%.1f" .TotalUsageHours}}</p>
{{if .UrgentItems}}
<h3>Urgent Maintenance Required</h3>
{{range .UrgentItems}}
<p>{{.Tool.ToolName}} ({{.Tool.ToolCode}}) - {{.Urgency.Text}}</p>
{{end}}
{{end}}
<p>Generated on: {{.Timestamp}}</p>
</body>
</html>`))

// SendMaintenanceAlert emails the maintenance-due tool list with per-tool
// urgency classification. No tools due means nothing to send.
func (s *Service) SendMaintenanceAlert(toolsDue []models.Tool, now time.Time) error {
	if len(toolsDue) == 0 {
		return nil
	}

	items := make([]dueItem, len(toolsDue))
	for i, tool := range toolsDue {
		items[i] = dueItem{Tool: tool, Urgency: recommend.ClassifyUrgency(tool.NextMaintenanceDue, now, s.urgency)}
	}

	body, err := render(maintenanceAlertTmpl, map[string]any{
		"Company":   s.company,
		"Items":     items,
		"Timestamp": now.Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s - Tools Maintenance Alert", s.company)
	return s.notifier.Notify(subject, body)
}

type riskItem struct {
	ToolCode    string
	RiskPercent float64
	Priority    models.Priority
	FailureDate string
	Days        int
}

// SendHighRiskAlert emails predictions whose combined risk exceeds 0.8.
// With none above the threshold nothing is sent.
func (s *Service) SendHighRiskAlert(predictions []models.Prediction, now time.Time) error {
	var items []riskItem
	for _, p := range predictions {
		if p.ConfidenceScore > highRiskThreshold {
			items = append(items, riskItem{
				ToolCode:    p.ToolCode,
				RiskPercent: p.ConfidenceScore * 100,
				Priority:    p.MaintenancePriority,
				FailureDate: p.PredictedFailureDate.Format("2006-01-02"),
				Days:        p.DaysUntilMaintenance,
			})
		}
	}
	if len(items) == 0 {
		return nil
	}

	body, err := render(riskAlertTmpl, map[string]any{
		"Company":     s.company,
		"Predictions": items,
		"Timestamp":   now.Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s - High Risk Tool Alert", s.company)
	return s.notifier.Notify(subject, body)
}

// SendDailySummary emails tool counts by status, usage totals and the
// urgent subset of the maintenance-due list.
func (s *Service) SendDailySummary(tools []models.Tool, toolsDue []models.Tool, totalUsageHours float64, now time.Time) error {
	available, inUse := 0, 0
	for _, tool := range tools {
		switch tool.Status {
		case models.StatusAvailable:
			available++
		case models.StatusInUse:
			inUse++
		}
	}

	var urgent []dueItem
	for _, tool := range toolsDue {
		u := recommend.ClassifyUrgency(tool.NextMaintenanceDue, now, s.urgency)
		if u.Urgent {
			urgent = append(urgent, dueItem{Tool: tool, Urgency: u})
		}
	}

	body, err := render(dailySummaryTmpl, map[string]any{
		"Company":         s.company,
		"Date":            now.Format("2006-01-02"),
		"TotalTools":      len(tools),
		"Available":       available,
		"InUse":           inUse,
		"DueCount":        len(toolsDue),
		"TotalUsageHours": totalUsageHours,
		"UrgentItems":     urgent,
		"Timestamp":       now.Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s - Daily Tool Inventory Summary", s.company)
	return s.notifier.Notify(subject, body)
}

// render executes the template and flattens the HTML into the plain-text
// body shoutrrr delivers.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.WithError(err).Error("failed to render alert template")
		return "", fmt.Errorf("render alert: %w", err)
	}
	return html2text.HTML2Text(buf.String()), nil
}
