package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/epos"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/log"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/utils"
)

const (
	discoveryWorkers = 50
	probeTimeout     = 300 * time.Millisecond
)

// HostProbe reports whether host looks like an ePOS printer.
type HostProbe func(ctx context.Context, host string) bool

// --- Discovery Logic ---

// DiscoverPrinters scans subnet (the first three octets, e.g. "192.168.2")
// for ePOS printers. An empty subnet is taken from the local address.
func DiscoverPrinters(ctx context.Context, subnet string) ([]string, error) {
	if subnet == "" {
		localIP, err := utils.DetectLocalIP()
		if err != nil {
			return nil, fmt.Errorf("detecting local IP: %w", err)
		}
		subnet = utils.SubnetOf(localIP)
	}

	log.FromContext(ctx).Infof("Scanning subnet: %s.0/24", subnet)

	client := &http.Client{Timeout: 2 * time.Second}
	return Discover(ctx, utils.SubnetHosts(subnet), func(ctx context.Context, host string) bool {
		return utils.Probe(ctx, host, 80, probeTimeout) && probeEPOS(ctx, client, host)
	}), nil
}

// Discover runs probe over hosts with a fixed worker pool and returns the
// hosts that answered, sorted.
func Discover(ctx context.Context, hosts []string, probe HostProbe) []string {
	ipChan := make(chan string)
	foundChan := make(chan string, len(hosts))
	var wg sync.WaitGroup

	for i := 0; i < discoveryWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ip := range ipChan {
				if probe(ctx, ip) {
					foundChan <- ip
				}
			}
		}()
	}

feed:
	for _, host := range hosts {
		select {
		case ipChan <- host:
		case <-ctx.Done():
			break feed
		}
	}
	close(ipChan)

	wg.Wait()
	close(foundChan)

	var found []string
	for ip := range foundChan {
		found = append(found, ip)
	}
	sort.Strings(found)
	return found
}

// probeEPOS checks that the ePOS service path exists on host. The service
// only accepts POST, so any status but 404 counts.
func probeEPOS(ctx context.Context, client *http.Client, host string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+host+epos.ServicePath, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode != http.StatusNotFound
}

// --- API Registration ---

// RegisterPrinterOnServer announces the printer to the backend and stores the
// agent key it hands back in p.
func RegisterPrinterOnServer(ctx context.Context, apiURL, apiKey string, p *model.PrinterConfig) error {
	endpoint := strings.TrimRight(apiURL, "/") + "/api/printers"
	jsonData, err := json.Marshal(p)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", apiKey)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("registering printer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Data struct {
			AgentKey string `json:"agent_key"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("decoding registration response: %w", err)
	}
	if response.Data.AgentKey == "" {
		return fmt.Errorf("no agent_key found in response")
	}

	p.AgentKey = response.Data.AgentKey
	return nil
}
