package client

// User is the account record returned by login and cached between runs
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// HarvestRequest is the input to the harvest calculator. PlantingDate uses
// YYYY-MM-DD; a zero PricePerKg lets the backend use its default price.
type HarvestRequest struct {
	CropType     string  `json:"crop_type" validate:"required"`
	Area         float64 `json:"area" validate:"gt=0"`
	PlantingDate string  `json:"planting_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PricePerKg   float64 `json:"price_per_kg,omitempty" validate:"gte=0"`
}

// HarvestResult is the harvest calculator's estimate
type HarvestResult struct {
	CropType             string  `json:"crop_type"`
	Area                 float64 `json:"area"`
	PricePerKg           float64 `json:"price_per_kg"`
	EstimatedYield       float64 `json:"estimated_yield"`
	EstimatedIncome      float64 `json:"estimated_income"`
	HarvestDurationDays  int     `json:"harvest_duration_days"`
	EstimatedHarvestDate string  `json:"estimated_harvest_date"`
}

// Recommendation is a weather-based planting recommendation for one crop
type Recommendation struct {
	ID             string   `json:"id,omitempty"`
	Crop           string   `json:"crop,omitempty"`
	Status         string   `json:"status"`
	StatusText     string   `json:"statusText"`
	Recommendation string   `json:"recommendation"`
	BestDates      []string `json:"bestDates,omitempty"`
	AvgTemp        float64  `json:"avgTemp,omitempty"`
	TotalRainfall  float64  `json:"totalRainfall,omitempty"`
	AvgHumidity    float64  `json:"avgHumidity,omitempty"`
	Scores         *Scores  `json:"scores,omitempty"`
}

// Scores breaks a recommendation down per weather factor
type Scores struct {
	Temperature float64 `json:"temperature"`
	Rainfall    float64 `json:"rainfall"`
	Humidity    float64 `json:"humidity"`
	Overall     float64 `json:"overall"`
}

// Detection is the disease detector's verdict for a leaf image
type Detection struct {
	Disease        string  `json:"disease,omitempty"`
	DiseaseClass   string  `json:"disease_class,omitempty"`
	Category       string  `json:"category,omitempty"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation,omitempty"`
}

// Farmer is the seller attached to a product
type Farmer struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Product is a marketplace listing. Price is kept as the backend sends it,
// which may be a number or a string.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       any     `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
	Farmer      *Farmer `json:"farmer,omitempty"`
}

// NewProduct is the form sent when listing a product for sale
type NewProduct struct {
	Name        string `form:"name" validate:"required"`
	Price       string `form:"price" validate:"required"`
	Description string `form:"description" validate:"required"`
	Image       File   `form:"image"`
}

// Article is an education article
type Article struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Image     string `json:"image,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// NewArticle is the form sent when uploading an article
type NewArticle struct {
	Title   string `form:"title" validate:"required"`
	Content string `form:"content" validate:"required"`
	Image   File   `form:"image"`
}

// Video is an education video
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Duration    string `json:"duration,omitempty"`
}

// NewVideo is the form sent when uploading a video
type NewVideo struct {
	Title       string `form:"title" validate:"required"`
	Description string `form:"description"`
	Video       File   `form:"video"`
}
