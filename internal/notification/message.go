package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

// Kind тип письма, используется в логах и метриках.
type Kind string

const (
	KindWelcome  Kind = "welcome"
	KindResetOtp Kind = "reset_otp"
)

// AppName имя сервиса в письмах.
const AppName = "Tasty Trail"

// Message письмо, готовое к отправке.
type Message struct {
	Kind     Kind
	To       string
	Subject  string
	HTMLBody string
}

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type welcomeData struct {
	AppName  string
	FullName string
	Year     int
}

type otpData struct {
	AppName      string
	FullName     string
	Code         int
	ValidMinutes int
	Year         int
}

// WelcomeMessage собирает приветственное письмо после регистрации.
func WelcomeMessage(to, fullName string) (Message, error) {
	body, err := render("welcome.html", welcomeData{
		AppName:  AppName,
		FullName: fullName,
		Year:     time.Now().Year(),
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		Kind:     KindWelcome,
		To:       to,
		Subject:  fmt.Sprintf("Добро пожаловать в %s!", AppName),
		HTMLBody: body,
	}, nil
}

// ResetOtpMessage собирает письмо с кодом сброса пароля.
func ResetOtpMessage(to, fullName string, code int, validFor time.Duration) (Message, error) {
	if fullName == "" {
		fullName = "пользователь"
	}

	body, err := render("reset_otp.html", otpData{
		AppName:      AppName,
		FullName:     fullName,
		Code:         code,
		ValidMinutes: int(validFor.Minutes()),
		Year:         time.Now().Year(),
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		Kind:     KindResetOtp,
		To:       to,
		Subject:  "Код для сброса пароля",
		HTMLBody: body,
	}, nil
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("notification: шаблон %s: %w", name, err)
	}
	return buf.String(), nil
}
