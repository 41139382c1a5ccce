package schedule

import "errors"

var ErrInvalidPeriod = errors.New("period end must be after period start")
