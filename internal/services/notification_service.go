package services

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"shop_manager/internal/models"
)

// NotificationData is the template payload handed to the notifier. The
// dispatcher fills it from the committed records; transports render it however
// they like.
type NotificationData struct {
	Subject       string
	CustomerName  string
	ProductName   string
	Reference     string
	TotalAmount   string
	WarrantyEnd   *time.Time
	WarrantyRef   string
}

// Notifier is the outbound transport capability. The orchestrator depends on
// this interface only, so a queue or retry layer can replace the SMTP client
// without touching settlement.
type Notifier interface {
	Notify(recipient string, data NotificationData) error
}

// Dispatcher sends best-effort notifications after a settlement commits. It is
// fire-and-forget: every failure path (error, panic, timeout) ends in a log
// line, never in an error returned to the caller.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, timeout: timeout, logger: logger}
}

// Flush blocks until all in-flight deliveries finish. Used on shutdown.
func (d *Dispatcher) Flush() {
	d.wg.Wait()
}

// DispatchSaleReceipt emails the customer their receipt. Runs asynchronously;
// the caller's committed result is never awaited against outbound I/O.
func (d *Dispatcher) DispatchSaleReceipt(sale *models.Sale) {
	if sale.CustomerEmail == "" {
		d.logger.Debug("sale has no customer email, skipping receipt", zap.Uint("sale_id", sale.ID))
		return
	}
	data := NotificationData{
		Subject:      "Your purchase receipt",
		CustomerName: sale.CustomerName,
		ProductName:  sale.ProductName,
		Reference:    sale.ReferenceNumber,
		TotalAmount:  sale.TotalAmount.String(),
		WarrantyEnd:  sale.WarrantyEnd,
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.send(sale.CustomerEmail, data, zap.Uint("sale_id", sale.ID))
	}()
}

// DispatchWarrantyConfirmation emails the customer their warranty details
// after a filing commits.
func (d *Dispatcher) DispatchWarrantyConfirmation(warranty *models.Warranty, sale *models.Sale) {
	if warranty.CustomerEmail == "" {
		d.logger.Debug("warranty has no customer email, skipping confirmation", zap.Uint("warranty_id", warranty.ID))
		return
	}
	expiry := warranty.ExpiryDate()
	data := NotificationData{
		Subject:      "Your warranty registration",
		CustomerName: warranty.CustomerName,
		ProductName:  warranty.DeviceName,
		Reference:    sale.ReferenceNumber,
		TotalAmount:  warranty.Price.String(),
		WarrantyEnd:  &expiry,
		WarrantyRef:  warranty.ReferenceNumber,
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.send(warranty.CustomerEmail, data, zap.Uint("warranty_id", warranty.ID))
	}()
}

// send performs one bounded delivery attempt. Panics in the transport are
// recovered here so a broken notifier cannot take the process down.
func (d *Dispatcher) send(recipient string, data NotificationData, ctxField zap.Field) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notifier panicked", ctxField, zap.String("recipient", recipient), zap.Any("panic", r))
		}
	}()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("notifier panic: %v", r)
			}
		}()
		done <- d.notifier.Notify(recipient, data)
	}()

	select {
	case err := <-done:
		if err != nil {
			d.logger.Error("notification delivery failed", ctxField, zap.String("recipient", recipient), zap.Error(err))
			return
		}
		d.logger.Info("notification delivered", ctxField, zap.String("recipient", recipient))
	case <-time.After(d.timeout):
		d.logger.Error("notification delivery timed out", ctxField, zap.String("recipient", recipient), zap.Duration("timeout", d.timeout))
	}
}
