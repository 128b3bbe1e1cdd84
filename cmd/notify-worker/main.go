package main

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/config"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/infra/mq"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/mail"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/service"
)

func main() {
	cfg := config.Load()

	mqConn := mq.MustConn(&cfg.RabbitMQ)
	mailer := mail.NewSendGridMailer(&cfg.Mail)

	ch, err := mqConn.Channel()
	if err != nil {
		log.Fatalf("failed to open channel: %v", err)
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(service.OrderEventsQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("failed to declare queue: %v", err)
	}

	// 手动确认模式（auto-ack=false）
	msgs, err := ch.Consume(service.OrderEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("failed to consume: %v", err)
	}

	log.Println("notify worker started, waiting for order events...")

	for d := range msgs {
		var m service.OrderCreatedMessage
		if err := json.Unmarshal(d.Body, &m); err != nil {
			log.Printf("invalid message: %v", err)
			// 消息格式错误，拒绝并丢弃
			_ = d.Nack(false, false)
			continue
		}
		handleMessage(mailer, &m, d)
	}
}

func handleMessage(mailer mail.Mailer, m *service.OrderCreatedMessage, d amqp.Delivery) {
	if err := mailer.SendOrderConfirmation(m.CustomerName, m.CustomerEmail, m.Code, m.Total, m.PaymentMethod); err != nil {
		log.Printf("send order confirmation failed: order=%s err=%v", m.Code, err)
		service.GetMonitor().RecordMailError()
		// 发信失败视为瞬时问题，重新入队
		_ = d.Nack(false, true)
		return
	}

	log.Printf("order confirmation sent: order=%s to=%s", m.Code, m.CustomerEmail)
	service.GetMonitor().RecordMailSent()

	if err := d.Ack(false); err != nil {
		log.Printf("failed to ack message: %v", err)
	}
}
