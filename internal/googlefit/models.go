package googlefit

// Aggregated data types requested by the dashboard
const (
	DataTypeStepCount     = "com.google.step_count.delta"
	DataTypeCalories      = "com.google.calories.expended"
	DataTypeDistance      = "com.google.distance.delta"
	DataTypeHeartRate     = "com.google.heart_rate.bpm"
	DataTypeActiveMinutes = "com.google.active_minutes"
)

// Derived data sources that Google Fit merges the aggregate from
const (
	SourceSteps         = "derived:com.google.step_count.delta:com.google.android.gms:estimated_steps"
	SourceCalories      = "derived:com.google.calories.expended:com.google.android.gms:merge_calories_expended"
	SourceDistance      = "derived:com.google.distance.delta:com.google.android.gms:merge_distance_delta"
	SourceHeartRate     = "derived:com.google.heart_rate.bpm:com.google.android.gms:merge_heart_rate_bpm"
	SourceActiveMinutes = "derived:com.google.active_minutes:com.google.android.gms:merge_active_minutes"
)

// UserMe addresses the signed-in user
const UserMe = "me"

// AggregateRequest mirrors the body of users.dataset.aggregate
type AggregateRequest struct {
	UserID          string        `json:"-"`
	AggregateBy     []AggregateBy `json:"aggregateBy"`
	BucketByTime    BucketByTime  `json:"bucketByTime"`
	StartTimeMillis int64         `json:"startTimeMillis"`
	EndTimeMillis   int64         `json:"endTimeMillis"`
}

type AggregateBy struct {
	DataTypeName string `json:"dataTypeName"`
}

type BucketByTime struct {
	DurationMillis int64 `json:"durationMillis"`
}

// AggregateResponse mirrors the aggregate result: buckets of datasets of points
type AggregateResponse struct {
	Bucket []Bucket `json:"bucket"`
}

type Bucket struct {
	StartTimeMillis int64     `json:"startTimeMillis"`
	EndTimeMillis   int64     `json:"endTimeMillis"`
	Dataset         []Dataset `json:"dataset"`
}

type Dataset struct {
	DataSourceID string  `json:"dataSourceId"`
	Point        []Point `json:"point"`
}

type Point struct {
	DataTypeName string  `json:"dataTypeName"`
	Value        []Value `json:"value"`
}

// Value holds one typed field of a point; unset fields are zero
type Value struct {
	IntVal int64   `json:"intVal"`
	FpVal  float64 `json:"fpVal"`
}

// IsZero reports whether neither field carries data
func (v Value) IsZero() bool {
	return v.IntVal == 0 && v.FpVal == 0
}
