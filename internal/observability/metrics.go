package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the billing counters exported on /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	InvoicesCreated    *prometheus.CounterVec
	RecurringGenerated prometheus.Counter
	EmailsDispatched   *prometheus.CounterVec
	EmailsSent         prometheus.Counter
	EmailsFailed       *prometheus.CounterVec
	OverdueMarked      prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,
		InvoicesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fibrewave_invoices_created_total",
			Help: "Invoices created, labelled by invoice type.",
		}, []string{"type"}),
		RecurringGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fibrewave_recurring_invoices_generated_total",
			Help: "Successor invoices created by the recurring generator.",
		}),
		EmailsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fibrewave_invoice_emails_dispatched_total",
			Help: "Invoice email jobs enqueued, labelled by lane.",
		}, []string{"lane"}),
		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fibrewave_invoice_emails_sent_total",
			Help: "Invoice emails delivered to the mail transport.",
		}),
		EmailsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fibrewave_invoice_emails_failed_total",
			Help: "Invoice email attempts that failed, labelled by finality.",
		}, []string{"terminal"}),
		OverdueMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fibrewave_invoices_marked_overdue_total",
			Help: "Invoices transitioned to overdue by the sweeper.",
		}),
	}

	reg.MustRegister(
		m.InvoicesCreated,
		m.RecurringGenerated,
		m.EmailsDispatched,
		m.EmailsSent,
		m.EmailsFailed,
		m.OverdueMarked,
	)
	return m
}
