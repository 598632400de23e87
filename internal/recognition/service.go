package recognition

import (
	"context"
	"fmt"
	"log"

	"checkin-kiosk/internal/api"
	"checkin-kiosk/models"
)

// ============================================================
// RECOGNITION SERVICE
// ============================================================

type Service struct {
	apiClient *api.APIClient
}

// NewService creates a new recognition service on top of the auth API client
func NewService(apiClient *api.APIClient) *Service {
	return &Service{apiClient: apiClient}
}

// ProcessFrame submits one data-URL encoded frame for recognition
func (s *Service) ProcessFrame(ctx context.Context, image, officerID string) (*models.ProcessFrameResponse, error) {
	reqBody := models.ProcessFrameRequest{
		Image:     image,
		OfficerID: officerID,
	}

	body, statusCode, err := s.apiClient.SendRequest(ctx, reqBody, models.PathProcessFrame)
	if err != nil {
		return nil, err
	}

	var result models.ProcessFrameResponse
	if err := s.apiClient.ParseResponse(body, &result); err != nil {
		if !s.apiClient.IsSuccessStatusCode(statusCode) {
			return nil, fmt.Errorf("API returned status %d", statusCode)
		}
		return nil, err
	}

	s.logRecognitionResult(&result)
	return &result, nil
}

// ConfirmAuth records the operator's approval for a recognised voter.
// Business failures come back as a parsed response with Success=false.
func (s *Service) ConfirmAuth(ctx context.Context, req models.ConfirmRequest) (*models.ConfirmResponse, error) {
	log.Printf("📝 Confirming %s (NIC %s) by officer %s, confidence %.2f%%",
		req.FullName, req.NIC, req.OfficerID, req.Confidence*100)

	body, statusCode, err := s.apiClient.SendRequest(ctx, req, models.PathConfirmAuth)
	if err != nil {
		return nil, err
	}

	var result models.ConfirmResponse
	if err := s.apiClient.ParseResponse(body, &result); err != nil {
		if !s.apiClient.IsSuccessStatusCode(statusCode) {
			return nil, fmt.Errorf("API returned status %d", statusCode)
		}
		return nil, err
	}

	if result.Success {
		log.Printf("✅ Confirmed: %s", result.Message)
	} else {
		log.Printf("❌ Confirmation rejected: %s", result.Error)
	}
	return &result, nil
}

// Stats fetches the auth service's authentication counters
func (s *Service) Stats(ctx context.Context) (models.AuthStats, error) {
	body, statusCode, err := s.apiClient.Get(ctx, models.PathAuthStats)
	if err != nil {
		return nil, err
	}
	if !s.apiClient.IsSuccessStatusCode(statusCode) {
		return nil, fmt.Errorf("API returned status %d", statusCode)
	}

	stats := models.AuthStats{}
	if err := s.apiClient.ParseResponse(body, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// logRecognitionResult logs the details of the recognition result
func (s *Service) logRecognitionResult(result *models.ProcessFrameResponse) {
	if !result.Success {
		log.Printf("⚠️  Recognition failed: %s", result.Error)
		return
	}
	if !result.IsMatch() {
		log.Printf("👀 No match (confidence %.2f%%)", result.Confidence*100)
		return
	}
	log.Printf("👤 Voter: %s (NIC %s)", result.Voter.FullName, result.Voter.NIC)
	log.Printf("📊 Confidence: %.2f%%", result.Confidence*100)
}
