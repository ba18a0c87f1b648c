package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the booking pipeline.
const (
	MetricBookingsCreated   = "BookingsCreated"
	MetricBookingsConfirmed = "BookingsConfirmed"
	MetricBookingsFailed    = "BookingsFailed"
)

// Metrics publishes counters to a CloudWatch namespace.
type Metrics struct {
	CloudWatch CloudWatchAPI
	Namespace  string
}

// NewMetrics returns a Metrics emitter. A nil client makes every call a no-op.
func NewMetrics(cw CloudWatchAPI, namespace string) *Metrics {
	return &Metrics{CloudWatch: cw, Namespace: namespace}
}

// Count adds value to the named counter, tagged with a service dimension.
func (m *Metrics) Count(ctx context.Context, name, service string, value float64) error {
	if m == nil || m.CloudWatch == nil {
		return nil
	}
	datum := cwtypes.MetricDatum{
		MetricName: sdkaws.String(name),
		Unit:       cwtypes.StandardUnitCount,
		Value:      sdkaws.Float64(value),
	}
	if service != "" {
		datum.Dimensions = []cwtypes.Dimension{
			{Name: sdkaws.String("ServiceID"), Value: sdkaws.String(service)},
		}
	}
	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(m.Namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
