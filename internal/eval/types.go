package eval

import "fmt"

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of a post-run invariant check.
type EvalResult struct {
	Passed  bool         `json:"passed"`
	Metrics []EvalMetric `json:"metrics"`
	Reason  string       `json:"reason"`
}

// #endregion eval-result

// #region collector
// collector accumulates metrics and failure reasons for one check run.
type collector struct {
	metrics     []EvalMetric
	failReasons []string
}

func (c *collector) check(name string, value float64, pass bool, failReason string) {
	c.metrics = append(c.metrics, EvalMetric{Name: name, Value: value, Pass: pass})
	if !pass {
		c.failReasons = append(c.failReasons, failReason)
	}
}

func (c *collector) result() EvalResult {
	reason := "all checks passed"
	if n := len(c.failReasons); n == 1 {
		reason = "eval failed: " + c.failReasons[0]
	} else if n > 1 {
		reason = fmt.Sprintf("eval failed: %d checks: %s", n, c.failReasons[0])
	}
	return EvalResult{
		Passed:  len(c.failReasons) == 0,
		Metrics: c.metrics,
		Reason:  reason,
	}
}

// #endregion collector
