package config

import (
	"net"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

func (c DatabaseRuntimeConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}

	c = normalizeDatabaseConfig(c)
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Name
	mc.ParseTime = c.ParseTime
	if loc, err := time.LoadLocation(c.Loc); err == nil {
		mc.Loc = loc
	}
	mc.Params = map[string]string{"charset": c.Charset}
	for key, value := range c.Params {
		mc.Params[key] = value
	}
	return mc.FormatDSN()
}

func (c RedisRuntimeConfig) URLValue() string {
	if u := normalizeRedisRawURL(c.URL); u != "" {
		return u
	}

	c = normalizeRedisConfig(c)
	u := &neturl.URL{
		Scheme: c.Scheme,
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + strconv.Itoa(c.DB),
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = neturl.UserPassword(c.Username, c.Password)
		} else {
			u.User = neturl.User(c.Username)
		}
	} else if c.Password != "" {
		u.User = neturl.UserPassword("", c.Password)
	}

	if len(c.Params) > 0 {
		query := neturl.Values{}
		for key, value := range c.Params {
			query.Set(key, value)
		}
		u.RawQuery = query.Encode()
	}
	return u.String()
}
