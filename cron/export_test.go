package cron

var MonitorRedisConnection = monitorRedisConnection
