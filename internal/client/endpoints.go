package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// Login authenticates the user and stores the returned token
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	reqBody := loginRequest{Email: email, Password: password}
	if err := c.check(reqBody); err != nil {
		return nil, err
	}

	var loginResp LoginResponse
	if err := c.Do(ctx, http.MethodPost, "/api/auth/login", reqBody, &loginResp); err != nil {
		return nil, err
	}

	if loginResp.Token == "" {
		return nil, fmt.Errorf("login response did not include a token")
	}
	if err := c.SetToken(loginResp.Token); err != nil {
		return nil, err
	}

	return &loginResp, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, email, password, role string) (map[string]any, error) {
	reqBody := registerRequest{Email: email, Password: password, Role: role}
	if err := c.check(reqBody); err != nil {
		return nil, err
	}

	var resp map[string]any
	if err := c.Do(ctx, http.MethodPost, "/api/auth/register", reqBody, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CalculateHarvest estimates yield and income for a planted area
func (c *Client) CalculateHarvest(ctx context.Context, req HarvestRequest) (*HarvestResult, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}

	var result HarvestResult
	if err := c.Do(ctx, http.MethodPost, "/api/harvest/calculate", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AllCrops asks for recommendations for every crop the backend knows
const AllCrops = "all"

// PlantingRecommendations returns recommendations for cropID (or AllCrops)
// at the given coordinates. A single-object response becomes a one-element
// slice.
func (c *Client) PlantingRecommendations(ctx context.Context, cropID string, lat, lon float64) ([]Recommendation, error) {
	if cropID == "" {
		cropID = AllCrops
	}
	return c.recommendations(ctx, "/api/planting/recommendations", cropID, lat, lon)
}

// PlantingRecommendation returns the recommendation for a single crop
func (c *Client) PlantingRecommendation(ctx context.Context, cropID string, lat, lon float64) ([]Recommendation, error) {
	return c.recommendations(ctx, "/api/planting/recommendation", cropID, lat, lon)
}

func (c *Client) recommendations(ctx context.Context, path, cropID string, lat, lon float64) ([]Recommendation, error) {
	query := url.Values{}
	if cropID != "" {
		query.Set("crop_id", cropID)
	}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var raw json.RawMessage
	if err := c.Get(ctx, path+"?"+query.Encode(), &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var recs []Recommendation
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return recs, nil
	}

	var rec Recommendation
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return []Recommendation{rec}, nil
}

// DetectDisease uploads a leaf image for disease detection
func (c *Client) DetectDisease(ctx context.Context, image File) (*Detection, error) {
	if err := requireFile("image", image); err != nil {
		return nil, err
	}

	var detection Detection
	err := c.postForm(ctx, "/api/plant/detect", []formField{
		fileField("image", image),
	}, &detection)
	if err != nil {
		return nil, err
	}
	return &detection, nil
}

// Products lists marketplace products
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.Get(ctx, "/api/ecommerce/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// AddProduct lists a product for sale
func (c *Client) AddProduct(ctx context.Context, p NewProduct) (map[string]any, error) {
	if err := c.check(p); err != nil {
		return nil, err
	}
	if err := requireFile("image", p.Image); err != nil {
		return nil, err
	}

	var resp map[string]any
	err := c.postForm(ctx, "/api/ecommerce/sell", []formField{
		textField("name", p.Name),
		textField("price", p.Price),
		textField("description", p.Description),
		fileField("image", p.Image),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Articles lists education articles
func (c *Client) Articles(ctx context.Context) ([]Article, error) {
	var articles []Article
	if err := c.Get(ctx, "/api/education/articles", &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// Videos lists education videos
func (c *Client) Videos(ctx context.Context) ([]Video, error) {
	var videos []Video
	if err := c.Get(ctx, "/api/education/videos", &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// UploadArticle publishes an article with a cover image
func (c *Client) UploadArticle(ctx context.Context, a NewArticle) (map[string]any, error) {
	if err := c.check(a); err != nil {
		return nil, err
	}
	if err := requireFile("image", a.Image); err != nil {
		return nil, err
	}

	var resp map[string]any
	err := c.postForm(ctx, "/api/education/articles/upload", []formField{
		textField("title", a.Title),
		textField("content", a.Content),
		fileField("image", a.Image),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UploadVideo publishes a video
func (c *Client) UploadVideo(ctx context.Context, v NewVideo) (map[string]any, error) {
	if err := c.check(v); err != nil {
		return nil, err
	}
	if err := requireFile("video", v.Video); err != nil {
		return nil, err
	}

	var resp map[string]any
	err := c.postForm(ctx, "/api/education/videos/upload", []formField{
		textField("title", v.Title),
		textField("description", v.Description),
		fileField("video", v.Video),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
