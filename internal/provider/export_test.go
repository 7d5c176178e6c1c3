package provider

var ToInt = toInt
