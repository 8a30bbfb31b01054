package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Tool mirrors the server's tool payload.
type Tool struct {
	ToolCode       string    `json:"tool_code"`
	ToolName       string    `json:"tool_name"`
	Category       string    `json:"category"`
	Location       string    `json:"location"`
	Status         string    `json:"status"`
	ConditionScore float64   `json:"condition_score"`
	UsageHours     float64   `json:"usage_hours"`
	PurchaseDate   time.Time `json:"purchase_date"`
}

// MaintenanceRecord mirrors the server's maintenance payload.
type MaintenanceRecord struct {
	ToolCode        string  `json:"tool_code"`
	MaintenanceType string  `json:"maintenance_type"`
	Description     string  `json:"description"`
	Cost            float64 `json:"cost"`
	Technician      string  `json:"technician"`
	ConditionBefore float64 `json:"condition_before"`
	ConditionAfter  float64 `json:"condition_after"`
}

var toolCatalog = []struct {
	Name     string
	Category string
}{
	{"Cordless Drill", "power_tool"},
	{"Circular Saw", "power_tool"},
	{"Angle Grinder", "power_tool"},
	{"Impact Wrench", "power_tool"},
	{"Torque Wrench", "hand_tool"},
	{"Socket Set", "hand_tool"},
	{"Laser Level", "measuring"},
	{"Multimeter", "measuring"},
	{"Chain Hoist", "lifting"},
	{"Pallet Jack", "lifting"},
	{"Safety Harness", "safety"},
	{"Gas Detector", "safety"},
}

var locations = []string{"warehouse_a", "warehouse_b", "site_north", "site_south", "workshop"}

var workers = []string{"worker-1", "worker-2", "worker-3", "worker-4", "worker-5", "worker-6"}

var technicians = []string{"tech-alvarez", "tech-chen", "tech-okafor"}

var authToken string

func authorizedPost(url string, contentType string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func createTool(apiURL string, index int) (string, error) {
	entry := toolCatalog[index%len(toolCatalog)]
	tool := Tool{
		ToolCode:       fmt.Sprintf("%s-%03d", categoryPrefix(entry.Category), index+1),
		ToolName:       entry.Name,
		Category:       entry.Category,
		Location:       locations[rand.Intn(len(locations))],
		Status:         "available",
		ConditionScore: 6 + rand.Float64()*4,
		UsageHours:     rand.Float64() * 500,
		PurchaseDate:   time.Now().AddDate(-rand.Intn(4), -rand.Intn(12), 0),
	}

	data, err := json.Marshal(tool)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool: %w", err)
	}

	resp, err := authorizedPost(apiURL+"/tools", "application/json", bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("failed to create tool: %w", err)
	}
	defer resp.Body.Close()

	// A conflict means the tool survived a previous run, reuse it.
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		return "", fmt.Errorf("tool creation failed with status: %d", resp.StatusCode)
	}

	log.WithFields(log.Fields{
		"tool_code": tool.ToolCode,
		"category":  tool.Category,
	}).Info("Created tool")

	return tool.ToolCode, nil
}

func categoryPrefix(category string) string {
	switch category {
	case "power_tool":
		return "PWR"
	case "hand_tool":
		return "HND"
	case "measuring":
		return "MSR"
	case "lifting":
		return "LFT"
	case "safety":
		return "SFT"
	default:
		return "TL"
	}
}

func checkout(apiURL, toolCode, userID string) bool {
	payload, _ := json.Marshal(map[string]string{"user_id": userID})
	resp, err := authorizedPost(apiURL+"/tools/"+toolCode+"/checkout", "application/json", bytes.NewBuffer(payload))
	if err != nil {
		log.WithError(err).Error("Failed to send checkout")
		return false
	}
	defer resp.Body.Close()
	log.WithFields(log.Fields{"tool_code": toolCode, "user_id": userID, "status": resp.Status}).Info("Sent checkout")
	return resp.StatusCode == http.StatusCreated
}

func checkin(apiURL, toolCode string) {
	resp, err := authorizedPost(apiURL+"/tools/"+toolCode+"/checkin", "application/json", &bytes.Buffer{})
	if err != nil {
		log.WithError(err).Error("Failed to send checkin")
		return
	}
	defer resp.Body.Close()
	log.WithFields(log.Fields{"tool_code": toolCode, "status": resp.Status}).Info("Sent checkin")
}

func recordMaintenance(apiURL, toolCode string) {
	before := 2 + rand.Float64()*5
	record := MaintenanceRecord{
		ToolCode:        toolCode,
		MaintenanceType: []string{"routine", "repair", "calibration", "inspection"}[rand.Intn(4)],
		Description:     "simulated service",
		Cost:            25 + rand.Float64()*200,
		Technician:      technicians[rand.Intn(len(technicians))],
		ConditionBefore: before,
		ConditionAfter:  before + (10-before)*rand.Float64(),
	}
	data, _ := json.Marshal(record)
	resp, err := authorizedPost(apiURL+"/maintenance", "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.WithError(err).Error("Failed to send maintenance record")
		return
	}
	defer resp.Body.Close()
	log.WithFields(log.Fields{"tool_code": toolCode, "status": resp.Status}).Info("Sent maintenance record")
}

// simulateTool drives one tool through checkout/checkin cycles with the
// occasional maintenance visit.
func simulateTool(apiURL, toolCode string, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		user := workers[rand.Intn(len(workers))]
		if !checkout(apiURL, toolCode, user) {
			continue
		}

		// hold the tool for a fraction of the interval
		time.Sleep(time.Duration(rand.Int63n(int64(interval / 2))))
		checkin(apiURL, toolCode)

		if rand.Float64() < 0.1 {
			recordMaintenance(apiURL, toolCode)
		}
	}
}

func main() {
	// Optional JWT for protected API
	authToken = os.Getenv("SIM_AUTH_TOKEN")

	inventorySize := 20
	if val := os.Getenv("INVENTORY_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			inventorySize = n
		}
	}

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	interval := 10 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	log.WithFields(log.Fields{
		"inventory_size": inventorySize,
		"api_url":        apiURL,
		"interval":       interval,
	}).Info("Starting tool inventory simulation")

	codes := make([]string, 0, inventorySize)
	for i := 0; i < inventorySize; i++ {
		code, err := createTool(apiURL, i)
		if err != nil {
			log.WithError(err).Error("Failed to create tool")
			continue
		}
		codes = append(codes, code)
	}

	log.WithField("created_tools", len(codes)).Info("Tool creation completed")
	if len(codes) == 0 {
		log.Error("No tools created. Ensure SIM_AUTH_TOKEN is valid and API is reachable. Exiting.")
		time.Sleep(2 * time.Second)
		return
	}

	for _, code := range codes {
		go simulateTool(apiURL, code, interval)
	}

	log.Info("Usage simulation started")
	select {} // Block forever
}
