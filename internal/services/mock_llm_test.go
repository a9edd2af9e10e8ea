package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

func TestMockLLMService(t *testing.T) {
	mockService := NewMockLLMAPI()

	req := CompletionRequest{
		Messages: []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "Hello"}},
		Models:   []string{"model-a", "model-b"},
	}

	resp, err := mockService.Chat(context.Background(), req)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "Mock response" {
		t.Errorf("Expected 'Mock response', got '%s'", resp.Content)
	}
	if resp.Model != "model-a" {
		t.Errorf("Expected model 'model-a', got '%s'", resp.Model)
	}

	chatCalls, _ := mockService.GetCalls()
	if len(chatCalls) != 1 {
		t.Fatalf("Expected 1 Chat call, got %d", len(chatCalls))
	}
	if chatCalls[0].Messages[0].Content != "Hello" {
		t.Errorf("Unexpected recorded message: %+v", chatCalls[0].Messages)
	}

	mockService.SetChatResponse("A. Run")
	resp, err = mockService.Chat(context.Background(), req)
	if err != nil || resp.Content != "A. Run" {
		t.Errorf("Expected canned response, got %+v, %v", resp, err)
	}

	mockService.Reset()
	chatCalls, listCalls := mockService.GetCalls()
	if len(chatCalls) != 0 || listCalls != 0 {
		t.Errorf("Expected calls to be reset, got %d chat, %d list", len(chatCalls), listCalls)
	}
}

func TestMockLLMService_ErrorHandling(t *testing.T) {
	mockService := NewMockLLMAPI()

	expectedErr := fmt.Errorf("generation failed")
	mockService.SetChatError(expectedErr)

	_, err := mockService.Chat(context.Background(), CompletionRequest{})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if err.Error() != expectedErr.Error() {
		t.Errorf("Expected error '%v', got '%v'", expectedErr, err)
	}

	models, err := mockService.ListModels(context.Background())
	if err != nil || len(models) != 1 {
		t.Errorf("Expected default models, got %v, %v", models, err)
	}

	mockService.SetListModelsError(fmt.Errorf("offline"))
	if _, err := mockService.ListModels(context.Background()); err == nil {
		t.Error("Expected ListModels error, got nil")
	}
}
