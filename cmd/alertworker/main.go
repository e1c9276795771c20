// Command alertworker drains the recharge-alert queue and notifies the admin
// reviewers by SMS. It runs as a separate process so a slow or flapping SMS
// gateway never backs up the wallet service.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tradelink/pkg/config"
	"tradelink/pkg/logger"
	"tradelink/pkg/queue"
	"tradelink/pkg/sms"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		panic(err)
	}
	defer queueClient.Close()

	smsClient := sms.NewClient(cfg)

	err = queueClient.ConsumeRechargeAlerts(func(task queue.RechargeAlertTask) error {
		log.Info("Sending recharge alert for order %s (user %s, ¥%.2f)",
			task.OrderNo, task.UserPhone, task.Amount)
		return smsClient.SendRechargeAlert(
			task.UserPhone,
			fmt.Sprintf("%.2f", task.Amount),
			task.OrderNo,
		)
	})
	if err != nil {
		log.Error("Failed to start consumer: %v", err)
		panic(err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Alert worker shutting down")
}
