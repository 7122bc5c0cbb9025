package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/junbin-yang/go-vending/internal/vending"
)

const namespace = "vending"

// Collector 售货机运行指标
type Collector struct {
	gatherer prometheus.Gatherer

	inputsTotal     *prometheus.CounterVec
	actionsTotal    *prometheus.CounterVec
	dispensedCents  prometheus.Counter
	productsTotal   *prometheus.CounterVec
	balanceCents    prometheus.Gauge
	logQueriesTotal prometheus.Counter
}

// New 在 reg 上注册全部指标；reg 为空时使用独立的新注册表
func New(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Collector{
		gatherer: reg,
		inputsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inputs_total",
			Help:      "Total number of inputs applied to the machine by input kind",
		}, []string{"input"}),
		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Total number of actions emitted by the transition tables",
		}, []string{"action"}),
		dispensedCents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispensed_cents_total",
			Help:      "Total change returned to customers in cents",
		}),
		productsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_total",
			Help:      "Total number of products dispensed by product name",
		}, []string{"product"}),
		balanceCents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "balance_cents",
			Help:      "Money currently held by the machine in cents",
		}),
		logQueriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_queries_total",
			Help:      "Total number of purchase log queries",
		}),
	}
}

// ObserveStep 记录一次状态转换，可直接作为 vending.WithStepHook 的参数
func (c *Collector) ObserveStep(step vending.Step) {
	c.inputsTotal.WithLabelValues(step.Input.String()).Inc()
	c.actionsTotal.WithLabelValues(step.Output.String()).Inc()
	c.balanceCents.Set(float64(step.To.Cents()))
}

// ObserveEffect 记录动作效果
func (c *Collector) ObserveEffect(e vending.Effect) {
	if e.DispensedCents > 0 {
		c.dispensedCents.Add(float64(e.DispensedCents))
	}
	if e.Recorded() {
		c.productsTotal.WithLabelValues(e.Product).Inc()
	}
}

// ObserveLogQuery 记录一次出货记录查询
func (c *Collector) ObserveLogQuery() {
	c.logQueriesTotal.Inc()
	c.inputsTotal.WithLabelValues(vending.QueryLog.String()).Inc()
}

// Handler 暴露指标的 HTTP 处理器
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
