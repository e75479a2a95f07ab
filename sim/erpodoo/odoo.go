// Package erpodoo connects the simulator to a live Odoo instance over its
// /jsonrpc endpoint. Sale orders become RECEIVED warehouse orders, storable
// products become the starting inventory, and warehouse results are written
// back through standard Odoo models. The adapter is read-mostly: it never
// confirms, cancels, or invoices anything on the ERP side.
package erpodoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/waresim/waresim/sim"
)

// ErrNotConnected is returned by data operations before Connect.
var ErrNotConnected = errors.New("erpodoo: not connected")

// ErrAuthFailed is returned when Odoo rejects the configured credentials.
var ErrAuthFailed = errors.New("erpodoo: authentication failed")

const (
	defaultTimeout = 30 * time.Second

	// searchLimit caps every search so a large production database cannot
	// flood one simulation attach.
	searchLimit = 100
)

// Config locates an Odoo instance. Password may be an API key.
type Config struct {
	URL      string
	Database string
	Username string
	Password string
	Timeout  time.Duration // zero means defaultTimeout
}

// System implements sim.ERPSystem against Odoo JSON-RPC. Like the mock, it is
// meant to be driven from a single goroutine, matching how the simulator
// calls it.
type System struct {
	cfg       Config
	baseURL   string
	client    *http.Client
	uid       int
	connected bool
	callbacks []func(sim.Event)
	eventSeq  int
	rpcSeq    int
}

var _ sim.ERPSystem = (*System)(nil)

// New builds a disconnected adapter. Connect authenticates.
func New(cfg Config) *System {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &System{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Connect authenticates against the common service. Odoo answers false, not
// a fault, for bad credentials.
func (s *System) Connect() error {
	var raw json.RawMessage
	if err := s.call("common", "login", []any{s.cfg.Database, s.cfg.Username, s.cfg.Password}, &raw); err != nil {
		return fmt.Errorf("erpodoo: login: %w", err)
	}
	var uid int
	if err := json.Unmarshal(raw, &uid); err != nil || uid == 0 {
		return ErrAuthFailed
	}
	s.uid = uid
	s.connected = true
	logrus.Infof("erpodoo: connected to %s as uid %d", s.baseURL, uid)
	return nil
}

// Disconnect clears session state. JSON-RPC is stateless, so there is
// nothing to close on the server.
func (s *System) Disconnect() error {
	s.connected = false
	s.uid = 0
	logrus.Debug("erpodoo: disconnected")
	return nil
}

func (s *System) Connected() bool { return s.connected }

// FetchOrders pulls confirmed sale orders and maps them into RECEIVED
// warehouse orders. Line SKUs resolve through product default codes, falling
// back to the numeric product id for uncoded products.
func (s *System) FetchOrders() ([]*sim.Order, error) {
	if !s.connected {
		return nil, ErrNotConnected
	}

	var heads []odooOrder
	domain := []any{[]any{"state", "=", "sale"}}
	fields := []string{"name", "partner_id", "priority", "order_line"}
	if err := s.searchRead("sale.order", domain, fields, &heads); err != nil {
		return nil, err
	}

	var lineIDs []int
	for _, h := range heads {
		lineIDs = append(lineIDs, h.OrderLine...)
	}
	lineByID := make(map[int]odooLine, len(lineIDs))
	productIDs := make(map[int]bool)
	if len(lineIDs) > 0 {
		var lines []odooLine
		if err := s.read("sale.order.line", lineIDs, []string{"product_id", "product_uom_qty"}, &lines); err != nil {
			return nil, err
		}
		for _, l := range lines {
			lineByID[l.ID] = l
			if pid, _, ok := refTuple(l.ProductID); ok {
				productIDs[pid] = true
			}
		}
	}

	skuByProduct, err := s.productCodes(productIDs)
	if err != nil {
		return nil, err
	}

	var out []*sim.Order
	for _, h := range heads {
		var lines []*sim.OrderLine
		for _, id := range h.OrderLine {
			l, ok := lineByID[id]
			if !ok {
				continue
			}
			sku := "UNKNOWN"
			if pid, _, ok := refTuple(l.ProductID); ok {
				sku = skuByProduct[pid]
			}
			lines = append(lines, &sim.OrderLine{SKU: sku, Quantity: int(l.Qty)})
		}
		if len(lines) == 0 {
			logrus.Debugf("erpodoo: order %s has no usable lines, skipped", h.Name)
			continue
		}
		customer := "UNKNOWN"
		if pid, _, ok := refTuple(h.PartnerID); ok {
			customer = strconv.Itoa(pid)
		}
		out = append(out, sim.NewOrder(h.Name, customer, lines, priorityFromOdoo(h.Priority), 0))
	}
	return out, nil
}

// FetchInventory reads storable products with on-hand quantities and costs,
// then overlays reorder thresholds from warehouse orderpoints. Products
// without an orderpoint keep zero thresholds, which disables simulated
// replenishment for them.
func (s *System) FetchInventory() (sim.Inventory, error) {
	if !s.connected {
		return nil, ErrNotConnected
	}

	var prods []odooProduct
	domain := []any{[]any{"detailed_type", "=", "product"}}
	fields := []string{"name", "default_code", "qty_available", "standard_price"}
	if err := s.searchRead("product.product", domain, fields, &prods); err != nil {
		return nil, err
	}

	inv := make(sim.Inventory, len(prods))
	skuByProduct := make(map[int]string, len(prods))
	for _, p := range prods {
		sku := strconv.Itoa(p.ID)
		if code, ok := stringField(p.DefaultCode); ok && code != "" {
			sku = code
		}
		skuByProduct[p.ID] = sku
		inv[sku] = &sim.InventoryItem{
			SKU:         sku,
			Name:        p.Name,
			Quantity:    int(p.QtyAvail),
			Location:    "Main Warehouse",
			UnitCost:    decimal.NewFromFloat(p.StdPrice),
			LastUpdated: time.Now(),
		}
	}

	var points []odooOrderpoint
	fields = []string{"product_id", "product_min_qty", "product_max_qty"}
	if err := s.searchRead("stock.warehouse.orderpoint", nil, fields, &points); err != nil {
		return nil, err
	}
	for _, pt := range points {
		pid, _, ok := refTuple(pt.ProductID)
		if !ok {
			continue
		}
		if item, ok := inv[skuByProduct[pid]]; ok {
			item.MinStock = int(pt.MinQty)
			item.MaxStock = int(pt.MaxQty)
		}
	}
	return inv, nil
}

// UpdateOrderStatus writes the warehouse status to a custom field on the
// sale order. Odoo's own state machine stays untouched: confirming or
// locking orders is a business action the twin must not take.
func (s *System) UpdateOrderStatus(orderID string, status sim.OrderStatus) error {
	if !s.connected {
		return ErrNotConnected
	}

	var ids []int
	domain := []any{[]any{"name", "=", orderID}}
	if err := s.executeKw("sale.order", "search", []any{domain}, map[string]any{"limit": 1}, &ids); err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("erpodoo: unknown order %q", orderID)
	}

	var ok bool
	values := map[string]any{"x_warehouse_status": string(status)}
	if err := s.executeKw("sale.order", "write", []any{ids, values}, nil, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("erpodoo: write rejected for order %q", orderID)
	}

	s.emit(sim.EventOrderStatusChanged, map[string]any{
		"order_id": orderID,
		"status":   string(status),
	})
	return nil
}

// UpdateInventory applies a signed stock adjustment through the
// stock.change.product.qty wizard, since qty_available cannot be written
// directly.
func (s *System) UpdateInventory(sku string, delta int) error {
	if !s.connected {
		return ErrNotConnected
	}

	var prods []odooProduct
	domain := []any{[]any{"default_code", "=", sku}}
	if err := s.searchRead("product.product", domain, []string{"qty_available"}, &prods); err != nil {
		return err
	}
	if len(prods) == 0 {
		return fmt.Errorf("erpodoo: unknown sku %q", sku)
	}

	newQty := int(prods[0].QtyAvail) + delta
	if newQty < 0 {
		return fmt.Errorf("erpodoo: stock for %q cannot go negative: %w", sku, sim.ErrInsufficientStock)
	}

	var wizID int
	values := map[string]any{"product_id": prods[0].ID, "new_quantity": newQty}
	if err := s.executeKw("stock.change.product.qty", "create", []any{values}, nil, &wizID); err != nil {
		return err
	}
	if err := s.executeKw("stock.change.product.qty", "change_product_qty", []any{[]int{wizID}}, nil, nil); err != nil {
		return err
	}

	s.emit(sim.EventInventoryUpdated, map[string]any{
		"sku":          sku,
		"change":       delta,
		"new_quantity": newQty,
	})
	return nil
}

// SubscribeToEvents registers a callback. JSON-RPC has no push channel, so
// only this adapter's own mutations produce events.
func (s *System) SubscribeToEvents(fn func(sim.Event)) error {
	s.callbacks = append(s.callbacks, fn)
	return nil
}

func (s *System) emit(kind sim.EventKind, data map[string]any) {
	s.eventSeq++
	e := sim.Event{
		Seq:     int64(s.eventSeq),
		ID:      fmt.Sprintf("ODOO-%06d", s.eventSeq),
		Kind:    kind,
		SimTime: -1,
		Wall:    time.Now(),
		Source:  sim.SourceERP,
		Data:    data,
	}
	for _, fn := range s.callbacks {
		fn(e)
	}
}

// productCodes resolves product ids to SKUs via default_code, with the
// numeric id as fallback. Ids are sorted so request payloads stay stable.
func (s *System) productCodes(ids map[int]bool) (map[int]string, error) {
	out := make(map[int]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list := make([]int, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	sort.Ints(list)

	var prods []odooProduct
	if err := s.read("product.product", list, []string{"default_code"}, &prods); err != nil {
		return nil, err
	}
	for _, p := range prods {
		if code, ok := stringField(p.DefaultCode); ok && code != "" {
			out[p.ID] = code
		} else {
			out[p.ID] = strconv.Itoa(p.ID)
		}
	}
	return out, nil
}

// JSON-RPC plumbing.

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int       `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// Error prefers the server-side exception message, which Odoo nests under
// data; the top-level message is usually just "Odoo Server Error".
func (e *rpcError) Error() string {
	if m, ok := e.Data["message"].(string); ok && m != "" {
		return fmt.Sprintf("erpodoo: server fault: %s", m)
	}
	return fmt.Sprintf("erpodoo: server fault: %s", e.Message)
}

func (s *System) call(service, method string, args []any, out any) error {
	s.rpcSeq++
	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      s.rpcSeq,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erpodoo: marshal %s.%s: %w", service, method, err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, s.baseURL+"/jsonrpc", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("erpodoo: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("erpodoo: %s.%s: %w", service, method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("erpodoo: %s.%s: HTTP %d: %s", service, method, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("erpodoo: decode %s.%s response: %w", service, method, err)
	}
	if parsed.Error != nil {
		return parsed.Error
	}
	if out != nil && len(parsed.Result) > 0 {
		if err := json.Unmarshal(parsed.Result, out); err != nil {
			return fmt.Errorf("erpodoo: decode %s.%s result: %w", service, method, err)
		}
	}
	return nil
}

func (s *System) executeKw(model, method string, args []any, kwargs map[string]any, out any) error {
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	callArgs := []any{s.cfg.Database, s.uid, s.cfg.Password, model, method, args, kwargs}
	return s.call("object", "execute_kw", callArgs, out)
}

func (s *System) searchRead(model string, domain []any, fields []string, out any) error {
	if domain == nil {
		domain = []any{}
	}
	kwargs := map[string]any{"fields": fields, "limit": searchLimit}
	return s.executeKw(model, "search_read", []any{domain}, kwargs, out)
}

func (s *System) read(model string, ids []int, fields []string, out any) error {
	return s.executeKw(model, "read", []any{ids}, map[string]any{"fields": fields}, out)
}

// Wire shapes for the Odoo models this adapter touches. Many2one fields
// arrive as [id, display_name] tuples, or false when unset; empty char
// fields also arrive as false, hence the RawMessage indirection.

type odooOrder struct {
	Name      string          `json:"name"`
	PartnerID json.RawMessage `json:"partner_id"`
	Priority  json.RawMessage `json:"priority"`
	OrderLine []int           `json:"order_line"`
}

type odooLine struct {
	ID        int             `json:"id"`
	ProductID json.RawMessage `json:"product_id"`
	Qty       float64         `json:"product_uom_qty"`
}

type odooProduct struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	DefaultCode json.RawMessage `json:"default_code"`
	QtyAvail    float64         `json:"qty_available"`
	StdPrice    float64         `json:"standard_price"`
}

type odooOrderpoint struct {
	ProductID json.RawMessage `json:"product_id"`
	MinQty    float64         `json:"product_min_qty"`
	MaxQty    float64         `json:"product_max_qty"`
}

func refTuple(raw json.RawMessage) (int, string, bool) {
	var pair []any
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) == 0 {
		return 0, "", false
	}
	id, ok := pair[0].(float64)
	if !ok {
		return 0, "", false
	}
	name := ""
	if len(pair) > 1 {
		name, _ = pair[1].(string)
	}
	return int(id), name, true
}

func stringField(raw json.RawMessage) (string, bool) {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	return v, true
}

// priorityFromOdoo maps the sale.order urgency flag onto the 1..5 scale.
// Odoo only distinguishes starred ("1") from normal.
func priorityFromOdoo(raw json.RawMessage) int {
	if v, ok := stringField(raw); ok && v == "1" {
		return 5
	}
	return 3
}
